// Package biba реализует жадную эвристику построения BIBA (best insertion, build all).
package biba

import (
	"errors"
	"fmt"

	"lahcPMS/internal/pms"
)

var ErrNoInsertion = errors.New("no valid insertion")

// Heuristic на каждом шаге добавляет в конец какой-либо машины ту работу,
// которая даёт наименьший makespan. Неназначенные работы перебираются
// по возрастанию id, машины - по возрастанию id; при равенстве побеждает
// первая найденная пара, что делает построение детерминированным.
type Heuristic struct{}

func New() Heuristic { return Heuristic{} }

type insertion struct {
	job      int
	machine  int
	makespan int
}

func (Heuristic) Build(inst *pms.Instance) (*pms.Solution, error) {
	if inst == nil {
		return nil, errors.New("instance is nil")
	}
	sol := pms.NewSolution(inst)

	remaining := make([]int, inst.NumJobs())
	for j := range remaining {
		remaining[j] = j
	}

	for len(remaining) > 0 {
		best, idx, err := findBestInsertion(sol, remaining)
		if err != nil {
			return nil, err
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: %d jobs left", ErrNoInsertion, len(remaining))
		}

		if err := sol.MustSchedule(best.machine).Append(best.job); err != nil {
			return nil, err
		}
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}

	sol.CalculateMakespan()
	return sol, nil
}

// findBestInsertion оценивает каждую пару (работа, машина) на одноразовой
// копии решения, поскольку результатом должен быть настоящий makespan.
func findBestInsertion(sol *pms.Solution, remaining []int) (insertion, int, error) {
	best := insertion{job: pms.NoJob, machine: -1}
	bestIdx := -1

	for i, job := range remaining {
		for m := 0; m < sol.NumMachines(); m++ {
			trial := sol.Copy()
			if err := trial.MustSchedule(m).Append(job); err != nil {
				return best, -1, err
			}
			ms := trial.CalculateMakespan()

			if bestIdx < 0 || ms < best.makespan {
				best = insertion{job: job, machine: m, makespan: ms}
				bestIdx = i
			}
		}
	}
	return best, bestIdx, nil
}
