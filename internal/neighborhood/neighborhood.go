// Package neighborhood содержит случайные операторы окрестности для LAHC.
// Каждый оператор возвращает независимую копию решения с одной
// случайной модификацией; исходное решение не изменяется.
package neighborhood

import (
	"math/rand"
	"time"

	"lahcPMS/internal/pms"
)

type Operator interface {
	Apply(sol *pms.Solution) (*pms.Solution, error)
	Name() string
}

// newRng возвращает rng или, если он не задан, генератор от текущего времени.
func newRng(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// InternalSwap меняет местами две работы на одной машине.
type InternalSwap struct {
	Rng *rand.Rand
}

func NewInternalSwap(rng *rand.Rand) *InternalSwap {
	return &InternalSwap{Rng: newRng(rng)}
}

func (*InternalSwap) Name() string { return "internal_swap" }

func (op *InternalSwap) Apply(sol *pms.Solution) (*pms.Solution, error) {
	neighbor := sol.Copy()

	// машины, на которых хотя бы 2 работы
	var candidates []int
	for m := 0; m < neighbor.NumMachines(); m++ {
		if neighbor.MustSchedule(m).Len() >= 2 {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return neighbor, nil
	}

	s := neighbor.MustSchedule(candidates[op.Rng.Intn(len(candidates))])
	n := s.Len()
	i := op.Rng.Intn(n)
	j := op.Rng.Intn(n - 1)
	if j >= i {
		j++
	}

	if err := s.Swap(i, j); err != nil {
		return nil, err
	}
	neighbor.Invalidate()
	return neighbor, nil
}

// ExternalSwap обменивает по одной случайной работе между двумя непустыми машинами.
type ExternalSwap struct {
	Rng *rand.Rand
}

func NewExternalSwap(rng *rand.Rand) *ExternalSwap {
	return &ExternalSwap{Rng: newRng(rng)}
}

func (*ExternalSwap) Name() string { return "external_swap" }

func (op *ExternalSwap) Apply(sol *pms.Solution) (*pms.Solution, error) {
	neighbor := sol.Copy()

	var nonEmpty []int
	for m := 0; m < neighbor.NumMachines(); m++ {
		if neighbor.MustSchedule(m).Len() > 0 {
			nonEmpty = append(nonEmpty, m)
		}
	}
	if len(nonEmpty) < 2 {
		return neighbor, nil
	}

	a := op.Rng.Intn(len(nonEmpty))
	b := op.Rng.Intn(len(nonEmpty) - 1)
	if b >= a {
		b++
	}
	s1 := neighbor.MustSchedule(nonEmpty[a])
	s2 := neighbor.MustSchedule(nonEmpty[b])

	pos1 := op.Rng.Intn(s1.Len())
	pos2 := op.Rng.Intn(s2.Len())

	job1, err := s1.RemoveAt(pos1)
	if err != nil {
		return nil, err
	}
	job2, err := s2.RemoveAt(pos2)
	if err != nil {
		return nil, err
	}
	if err := s1.InsertAt(job2, pos1); err != nil {
		return nil, err
	}
	if err := s2.InsertAt(job1, pos2); err != nil {
		return nil, err
	}

	neighbor.Invalidate()
	return neighbor, nil
}
