// Package sa - имитация отжига на тех же операторах окрестности и
// локальном поиске, что и LAHC. Используется как базовая линия в бенчмарке.
package sa

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/go-logr/logr"

	"lahcPMS/internal/biba"
	"lahcPMS/internal/localsearch"
	"lahcPMS/internal/neighborhood"
	"lahcPMS/internal/opt"
	"lahcPMS/internal/pms"
)

// Solver - структура реализации алгоритма имитации отжига
type Solver struct {
	Cfg Config
	Rng *rand.Rand
	Log logr.Logger
}

// New возвращает новый SA-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
// Используется в фабриках.
func New(cfg Config, rng *rand.Rand) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	return &Solver{Cfg: cfg, Rng: rng, Log: logr.Discard()}, nil
}

// Solve - реализация эвристики.
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

	maxIter := s.Cfg.Iterations
	if maxIter <= 0 {
		maxIter = s.Cfg.IterationsPerJob * inst.NumJobs()
	}

	ls, err := localsearch.New(localsearch.Config{MaxPasses: s.Cfg.MaxLocalSearchPasses}, s.Rng)
	if err != nil {
		return opt.Result{}, err
	}
	operators := []neighborhood.Operator{
		neighborhood.NewInternalSwap(s.Rng),
		neighborhood.NewExternalSwap(s.Rng),
	}

	// Начальное решение
	curr, err := biba.New().Build(inst)
	if err != nil {
		return opt.Result{}, err
	}
	currCost := curr.Makespan()
	best := curr.Copy()
	bestCost := currCost
	initial := currCost
	lastImprovement := 0

	T := s.Cfg.InitialTemp
	iter := 0
	for ; iter < maxIter && T > s.Cfg.FinalTemp; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			return opt.Result{
				Solution:        best,
				Makespan:        bestCost,
				InitialMakespan: initial,
				Evaluations:     ls.Evaluations,
				Iterations:      iter,
				LastImprovement: lastImprovement,
				Duration:        time.Since(start),
				Meta: map[string]any{
					"stopped": "context",
					"T":       T,
				},
			}, err
		}

		op := operators[s.Rng.Intn(len(operators))]
		cand, err := op.Apply(curr)
		if err != nil {
			return opt.Result{}, err
		}
		cand, err = ls.Improve(cand)
		if err != nil {
			return opt.Result{}, err
		}

		candCost := cand.Makespan()
		delta := candCost - currCost
		accept := false
		if delta <= 0 {
			// Улучшающее решение принимаем всегда
			accept = true
		} else {
			// Критерий Метрополиса:
			// допускает принятие ухудшающих решений
			p := math.Exp(-float64(delta) / T)
			if s.Rng.Float64() < p {
				accept = true
			}
		}

		if accept {
			curr = cand
			currCost = candCost

			// Обновление глобально лучшего решения
			if currCost < bestCost {
				bestCost = currCost
				best = curr.Copy()
				lastImprovement = iter + 1
			}
		}

		// Охлаждение температуры
		T *= s.Cfg.Alpha
	}

	s.Log.Info("SA finished", "iterations", iter, "initialMakespan", initial, "finalMakespan", bestCost)

	return opt.Result{
		Solution:        best,
		Makespan:        bestCost,
		InitialMakespan: initial,
		Evaluations:     ls.Evaluations,
		Iterations:      iter,
		LastImprovement: lastImprovement,
		Duration:        time.Since(start),
		Meta: map[string]any{
			"initial_temp": s.Cfg.InitialTemp,
			"final_temp":   s.Cfg.FinalTemp,
			"alpha":        s.Cfg.Alpha,
		},
	}, nil
}
