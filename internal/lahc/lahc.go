// Package lahc реализует метаэвристику Late Acceptance Hill Climbing.
package lahc

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-logr/logr"

	"lahcPMS/internal/biba"
	"lahcPMS/internal/localsearch"
	"lahcPMS/internal/logging"
	"lahcPMS/internal/neighborhood"
	"lahcPMS/internal/opt"
	"lahcPMS/internal/pms"
)

// Progress передаётся наблюдателю после каждой итерации.
type Progress struct {
	Iteration int
	Best      int
	Current   int
	Elapsed   time.Duration
	Remaining time.Duration
}

// Solver - структура реализации LAHC.
type Solver struct {
	Cfg Config
	Rng *rand.Rand

	// Heuristic строит начальное решение (по умолчанию BIBA)
	Heuristic opt.Constructor
	Log       logr.Logger

	// Progress вызывается между итерациями; false - досрочная остановка
	// с лучшим найденным решением.
	Progress func(Progress) bool
}

// New возвращает новый LAHC-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
// Используется в фабриках.
func New(cfg Config, rng *rand.Rand) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	return &Solver{
		Cfg:       cfg,
		Rng:       rng,
		Heuristic: biba.New(),
		Log:       logr.Discard(),
	}, nil
}

// Solve - основной цикл алгоритма
func (s *Solver) Solve(ctx context.Context, inst *pms.Instance) (opt.Result, error) {
	start := time.Now()

	if inst == nil {
		return opt.Result{}, fmt.Errorf("instance is nil")
	}
	if err := s.Cfg.Validate(); err != nil {
		return opt.Result{}, err
	}
	if s.Rng == nil {
		return opt.Result{}, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	log := s.Log

	// Все операторы используют общий генератор
	ls, err := localsearch.New(localsearch.Config{MaxPasses: s.Cfg.MaxLocalSearchPasses}, s.Rng)
	if err != nil {
		return opt.Result{}, err
	}
	operators := []neighborhood.Operator{
		neighborhood.NewInternalSwap(s.Rng),
		neighborhood.NewExternalSwap(s.Rng),
	}

	// Начальное решение
	heuristic := s.Heuristic
	if heuristic == nil {
		heuristic = biba.New()
	}
	curr, err := heuristic.Build(inst)
	if err != nil {
		return opt.Result{}, fmt.Errorf("построение начального решения: %w", err)
	}
	best := curr.Copy()
	initial := best.Makespan()

	// Список истории заполняется начальным makespan
	history := make([]int, s.Cfg.HistoryLength)
	for i := range history {
		history[i] = initial
	}

	budget := s.Cfg.Budget(inst)
	log.Info("LAHC started",
		"jobs", inst.NumJobs(), "machines", inst.NumMachines(),
		"initialMakespan", initial, "budget", budget,
		"historyLength", s.Cfg.HistoryLength, "nonImprovementLimit", s.Cfg.NonImprovementLimit)

	var trace []int
	iter := 0
	lastImprovement := 0
	nonImproving := 0
	stopped := "non_improvement"

	result := func() opt.Result {
		return opt.Result{
			Solution:        best,
			Makespan:        best.Makespan(),
			InitialMakespan: initial,
			Evaluations:     ls.Evaluations,
			Iterations:      iter,
			LastImprovement: lastImprovement,
			Duration:        time.Since(start),
			Trace:           trace,
			Meta: map[string]any{
				"history_length":        s.Cfg.HistoryLength,
				"non_improvement_limit": s.Cfg.NonImprovementLimit,
				"budget":                budget.String(),
				"stopped":               stopped,
			},
		}
	}

	for nonImproving < s.Cfg.NonImprovementLimit {
		if time.Since(start) >= budget {
			stopped = "time"
			break
		}
		if s.Cfg.MaxIterations > 0 && iter >= s.Cfg.MaxIterations {
			stopped = "iterations"
			break
		}
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			stopped = "context"
			return result(), err
		}

		iter++

		// a. Соседнее решение (50/50)
		op := operators[s.Rng.Intn(len(operators))]
		neighbor, err := op.Apply(curr)
		if err != nil {
			return result(), fmt.Errorf("итерация %d, %s: %w", iter, op.Name(), err)
		}

		// b. Локальный поиск
		neighbor, err = ls.Improve(neighbor)
		if err != nil {
			return result(), fmt.Errorf("итерация %d, локальный поиск: %w", iter, err)
		}

		currCost := curr.Makespan()
		neighborCost := neighbor.Makespan()

		// c. Критерий принятия LAHC
		idx := iter % s.Cfg.HistoryLength
		if neighborCost <= currCost || neighborCost < history[idx] {
			curr = neighbor
		}

		// d. Обновление глобально лучшего решения
		if neighborCost < best.Makespan() {
			best = neighbor.Copy()
			lastImprovement = iter
			nonImproving = 0
			log.V(logging.DEBUG).Info("New best makespan", "iteration", iter, "makespan", neighborCost)
		} else {
			nonImproving++
		}

		// e. Обновление списка истории
		history[idx] = curr.Makespan()

		if s.Cfg.RecordTrace {
			trace = append(trace, best.Makespan())
		}
		if iter%1000 == 0 {
			log.V(logging.TRACE).Info("LAHC progress", "iteration", iter, "best", best.Makespan(), "current", curr.Makespan())
		}

		if s.Progress != nil {
			elapsed := time.Since(start)
			p := Progress{
				Iteration: iter,
				Best:      best.Makespan(),
				Current:   curr.Makespan(),
				Elapsed:   elapsed,
				Remaining: max(budget-elapsed, 0),
			}
			if !s.Progress(p) {
				stopped = "progress"
				break
			}
		}
	}

	res := result()
	log.Info("LAHC finished",
		"iterations", res.Iterations, "elapsed", res.Duration,
		"lastImprovement", res.LastImprovement,
		"initialMakespan", res.InitialMakespan, "finalMakespan", res.Makespan,
		"improvementPct", fmt.Sprintf("%.2f", res.Improvement()), "stopped", stopped)
	return res, nil
}
