package opt

import (
	"context"
	"time"

	"lahcPMS/internal/pms"
)

// Optimizer - метаэвристика, возвращающая лучшее найденное решение.
type Optimizer interface {
	Solve(ctx context.Context, inst *pms.Instance) (Result, error)
}

// Constructor строит начальное допустимое решение.
type Constructor interface {
	Build(inst *pms.Instance) (*pms.Solution, error)
}

type Result struct {
	Solution        *pms.Solution
	Makespan        int
	InitialMakespan int
	Evaluations     int
	Iterations      int
	LastImprovement int
	Duration        time.Duration
	// Trace - лучший makespan после каждой итерации (если запрошено)
	Trace []int
	Meta  map[string]any
}

// Improvement возвращает относительное улучшение в процентах.
func (r Result) Improvement() float64 {
	if r.InitialMakespan == 0 {
		return 0
	}
	return 100.0 * float64(r.InitialMakespan-r.Makespan) / float64(r.InitialMakespan)
}
