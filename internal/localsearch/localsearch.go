// Package localsearch реализует пять операторов улучшения решения:
//
//  1. Bottleneck Internal Swap
//  2. Bottleneck External Insertion
//  3. Bottleneck External Swap
//  4. Balancing
//  5. Inter-Machine Insertion (уравнение (1) статьи)
//
// Каждый оператор изменяет решение на месте и сообщает, был ли применён ход.
package localsearch

import (
	"fmt"
	"math/rand"

	"lahcPMS/internal/pms"
)

type LocalSearch struct {
	Cfg Config
	Rng *rand.Rand

	// Evaluations - число пробных ходов за всё время жизни
	Evaluations int
}

func New(cfg Config, rng *rand.Rand) (*LocalSearch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	return &LocalSearch{Cfg: cfg, Rng: rng}, nil
}

// Improve применяет операторы 1→5 к копии решения, пока проход
// что-то меняет, но не более Cfg.MaxPasses проходов.
func (ls *LocalSearch) Improve(sol *pms.Solution) (*pms.Solution, error) {
	improved := sol.Copy()
	for pass := 0; pass < ls.Cfg.MaxPasses; pass++ {
		changed, err := ls.applyOperators(improved)
		if err != nil {
			return nil, err
		}
		if !changed {
			break
		}
	}
	return improved, nil
}

func (ls *LocalSearch) applyOperators(sol *pms.Solution) (bool, error) {
	ops := [...]func(*pms.Solution) (bool, error){
		ls.BottleneckInternalSwap,
		ls.BottleneckExternalInsertion,
		ls.BottleneckExternalSwap,
		ls.Balancing,
		ls.InterMachineInsertion,
	}

	changed := false
	for _, op := range ops {
		ok, err := op(sol)
		if err != nil {
			return changed, err
		}
		changed = changed || ok
	}
	return changed, nil
}

// BottleneckInternalSwap перебирает все обмены пар позиций на каждой
// машине-узком месте и применяет лучший строго улучшающий.
// Список узких мест фиксируется на входе, а базовый makespan
// обновляется после каждого применённого хода.
func (ls *LocalSearch) BottleneckInternalSwap(sol *pms.Solution) (bool, error) {
	current := sol.Makespan()
	improved := false

	for _, b := range sol.BottleneckMachines() {
		s := sol.MustSchedule(b)
		n := s.Len()
		if n < 2 {
			continue
		}

		var best *swapMove
		bestMs := current
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				mv := &swapMove{machine: b, i: i, j: j}
				var ms int
				if err := ls.trial(sol, mv, func() { ms = sol.Makespan() }); err != nil {
					return improved, err
				}
				if ms < bestMs {
					best, bestMs = mv, ms
				}
			}
		}

		if best != nil {
			if err := best.apply(sol); err != nil {
				return improved, err
			}
			improved = true
			current = bestMs
		}
	}
	return improved, nil
}

// BottleneckExternalInsertion переносит работу с машины-узкого места
// на случайно выбранную машину, не являющуюся узким местом.
// Ход допустим, если он строго уменьшает makespan либо сохраняет его,
// строго уменьшая время завершения узкого места.
func (ls *LocalSearch) BottleneckExternalInsertion(sol *pms.Solution) (bool, error) {
	current := sol.Makespan()
	bottlenecks := sol.BottleneckMachines()
	others := nonBottlenecks(sol.NumMachines(), bottlenecks)
	if len(others) == 0 {
		return false, nil
	}

	improved := false
	for _, b := range bottlenecks {
		src := sol.MustSchedule(b)
		if src.Len() == 0 {
			continue
		}
		target := others[ls.Rng.Intn(len(others))]
		dst := sol.MustSchedule(target)

		var best *relocateMove
		var bestCand candidate
		for p := 0; p < src.Len(); p++ {
			for q := 0; q <= dst.Len(); q++ {
				mv := &relocateMove{from: b, fromPos: p, to: target, toPos: q}
				var c candidate
				err := ls.trial(sol, mv, func() {
					c = candidate{makespan: sol.Makespan(), local: src.CompletionTime()}
				})
				if err != nil {
					return improved, err
				}
				if c.eligible(current) && (best == nil || c.better(bestCand)) {
					best, bestCand = mv, c
				}
			}
		}

		if best != nil {
			if err := best.apply(sol); err != nil {
				return improved, err
			}
			improved = true
			current = bestCand.makespan
		}
	}
	return improved, nil
}

// BottleneckExternalSwap обменивает работу узкого места с работой случайной
// машины, не являющейся узким местом. При равном makespan ход допустим,
// если максимум из времён завершения обеих машин строго меньше текущего makespan.
func (ls *LocalSearch) BottleneckExternalSwap(sol *pms.Solution) (bool, error) {
	current := sol.Makespan()
	bottlenecks := sol.BottleneckMachines()
	others := nonBottlenecks(sol.NumMachines(), bottlenecks)
	if len(others) == 0 {
		return false, nil
	}

	improved := false
	for _, b := range bottlenecks {
		src := sol.MustSchedule(b)
		if src.Len() == 0 {
			continue
		}
		target := others[ls.Rng.Intn(len(others))]
		dst := sol.MustSchedule(target)
		if dst.Len() == 0 {
			continue
		}

		var best *exchangeMove
		var bestCand candidate
		for p := 0; p < src.Len(); p++ {
			for q := 0; q < dst.Len(); q++ {
				mv := &exchangeMove{m1: b, p1: p, m2: target, p2: q}
				var c candidate
				err := ls.trial(sol, mv, func() {
					c = candidate{
						makespan: sol.Makespan(),
						local:    max(src.CompletionTime(), dst.CompletionTime()),
					}
				})
				if err != nil {
					return improved, err
				}
				if c.eligible(current) && (best == nil || c.better(bestCand)) {
					best, bestCand = mv, c
				}
			}
		}

		if best != nil {
			if err := best.apply(sol); err != nil {
				return improved, err
			}
			improved = true
			current = bestCand.makespan
		}
	}
	return improved, nil
}

// Balancing переносит последнюю работу узкого места на лучшую позицию
// среди машин, не являющихся узкими местами. После каждого применённого
// хода узкие места пересчитываются и проход начинается заново.
func (ls *LocalSearch) Balancing(sol *pms.Solution) (bool, error) {
	improved := false

	for {
		current := sol.Makespan()
		bottlenecks := sol.BottleneckMachines()
		isBottleneck := make([]bool, sol.NumMachines())
		for _, b := range bottlenecks {
			isBottleneck[b] = true
		}

		changed := false
		for _, b := range bottlenecks {
			src := sol.MustSchedule(b)
			if src.Len() == 0 {
				continue
			}
			last := src.Len() - 1

			var best *relocateMove
			bestMs := current
			for m := 0; m < sol.NumMachines(); m++ {
				if isBottleneck[m] {
					continue
				}
				dst := sol.MustSchedule(m)
				for q := 0; q <= dst.Len(); q++ {
					mv := &relocateMove{from: b, fromPos: last, to: m, toPos: q}
					var ms int
					if err := ls.trial(sol, mv, func() { ms = sol.Makespan() }); err != nil {
						return improved, err
					}
					if ms < bestMs {
						best, bestMs = mv, ms
					}
				}
			}

			if best != nil {
				if err := best.apply(sol); err != nil {
					return improved, err
				}
				changed = true
				improved = true
				break
			}
		}

		if !changed {
			return improved, nil
		}
	}
}

// InterMachineInsertion переносит работы между парами машин (k, h) по
// уравнению (1): C_k - C_k' > C_h' - C_h и Cmax' <= Cmax. Из всех пар
// применяется ход с наибольшим чистым выигрышем, после чего перебор
// начинается заново. Не более M^2 ходов за вызов.
func (ls *LocalSearch) InterMachineInsertion(sol *pms.Solution) (bool, error) {
	m := sol.NumMachines()
	maxMoves := m * m
	improved := false

	for moves := 0; moves < maxMoves; moves++ {
		current := sol.Makespan()

		var best *relocateMove
		bestGain := 0
		for k := 0; k < m; k++ {
			sk := sol.MustSchedule(k)
			if sk.Len() == 0 {
				continue
			}
			for h := 0; h < m; h++ {
				if h == k {
					continue
				}
				sh := sol.MustSchedule(h)
				ck, ch := sk.CompletionTime(), sh.CompletionTime()

				for p := 0; p < sk.Len(); p++ {
					for q := 0; q <= sh.Len(); q++ {
						mv := &relocateMove{from: k, fromPos: p, to: h, toPos: q}
						var newCk, newCh, newMs int
						err := ls.trial(sol, mv, func() {
							newCk, newCh, newMs = sk.CompletionTime(), sh.CompletionTime(), sol.Makespan()
						})
						if err != nil {
							return improved, err
						}

						gainK := ck - newCk
						costH := newCh - ch
						if gainK > costH && newMs <= current && gainK-costH > bestGain {
							best, bestGain = mv, gainK-costH
						}
					}
				}
			}
		}

		if best == nil {
			break
		}
		if err := best.apply(sol); err != nil {
			return improved, err
		}
		improved = true
	}
	return improved, nil
}

// candidate - оценка пробного хода: итоговый makespan и локальный
// показатель (время завершения узкого места или пары машин).
type candidate struct {
	makespan int
	local    int
}

func (c candidate) eligible(current int) bool {
	return c.makespan < current || (c.makespan == current && c.local < current)
}

func (c candidate) better(o candidate) bool {
	return c.makespan < o.makespan || (c.makespan == o.makespan && c.local < o.local)
}

func nonBottlenecks(machines int, bottlenecks []int) []int {
	isBottleneck := make([]bool, machines)
	for _, b := range bottlenecks {
		isBottleneck[b] = true
	}
	var out []int
	for m := 0; m < machines; m++ {
		if !isBottleneck[m] {
			out = append(out, m)
		}
	}
	return out
}
