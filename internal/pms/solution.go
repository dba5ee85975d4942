package pms

import (
	"fmt"
	"strings"
)

// Solution - по одному Schedule на машину плюс кэшированный makespan.
type Solution struct {
	inst      *Instance
	schedules []*Schedule
	makespan  int
	evaluated bool
}

func NewSolution(inst *Instance) *Solution {
	sol := &Solution{
		inst:      inst,
		schedules: make([]*Schedule, inst.NumMachines()),
	}
	for m := range sol.schedules {
		sol.schedules[m] = &Schedule{inst: inst, machine: m, owner: sol}
	}
	return sol
}

// FromAssignment строит решение из последовательностей по машинам.
func FromAssignment(inst *Instance, assignment [][]int) (*Solution, error) {
	if len(assignment) != inst.NumMachines() {
		return nil, fmt.Errorf("%w: assignment has %d machines (want %d)", ErrMachineOutOfRange, len(assignment), inst.NumMachines())
	}
	sol := NewSolution(inst)
	for m, seq := range assignment {
		for _, job := range seq {
			if err := sol.schedules[m].Append(job); err != nil {
				return nil, err
			}
		}
	}
	sol.CalculateMakespan()
	return sol, nil
}

func (sol *Solution) Instance() *Instance { return sol.inst }
func (sol *Solution) NumMachines() int    { return len(sol.schedules) }

func (sol *Solution) Schedule(machine int) (*Schedule, error) {
	if machine < 0 || machine >= len(sol.schedules) {
		return nil, fmt.Errorf("%w: %d (machines=%d)", ErrMachineOutOfRange, machine, len(sol.schedules))
	}
	return sol.schedules[machine], nil
}

func (sol *Solution) MustSchedule(machine int) *Schedule {
	s, err := sol.Schedule(machine)
	if err != nil {
		panic(err)
	}
	return s
}

// CalculateMakespan пересчитывает все расписания и обновляет кэш.
func (sol *Solution) CalculateMakespan() int {
	ms := 0
	for _, s := range sol.schedules {
		s.Recompute()
		if s.completion > ms {
			ms = s.completion
		}
	}
	sol.makespan = ms
	sol.evaluated = true
	return ms
}

// Makespan возвращает кэшированное значение, пересчитывая его при необходимости.
// Времена расписаний всегда согласованы с последовательностями,
// поэтому достаточно взять максимум по временам завершения.
func (sol *Solution) Makespan() int {
	if !sol.evaluated {
		ms := 0
		for _, s := range sol.schedules {
			if s.completion > ms {
				ms = s.completion
			}
		}
		sol.makespan = ms
		sol.evaluated = true
	}
	return sol.makespan
}

func (sol *Solution) Evaluated() bool { return sol.evaluated }

func (sol *Solution) Invalidate() { sol.evaluated = false }

// BottleneckMachines - машины, время завершения которых равно makespan.
func (sol *Solution) BottleneckMachines() []int {
	ms := sol.Makespan()
	var out []int
	for m, s := range sol.schedules {
		if s.completion == ms {
			out = append(out, m)
		}
	}
	return out
}

// Copy - глубокая копия; кэш makespan копируется как есть.
func (sol *Solution) Copy() *Solution {
	c := &Solution{
		inst:      sol.inst,
		schedules: make([]*Schedule, len(sol.schedules)),
		makespan:  sol.makespan,
		evaluated: sol.evaluated,
	}
	for m, s := range sol.schedules {
		cs := s.Copy()
		cs.owner = c
		c.schedules[m] = cs
	}
	return c
}

func (sol *Solution) TotalJobs() int {
	n := 0
	for _, s := range sol.schedules {
		n += len(s.jobs)
	}
	return n
}

func (sol *Solution) IsComplete() bool {
	return sol.TotalJobs() == sol.inst.NumJobs()
}

// Assignment возвращает копии последовательностей всех машин.
func (sol *Solution) Assignment() [][]int {
	out := make([][]int, len(sol.schedules))
	for m, s := range sol.schedules {
		out[m] = s.Jobs()
	}
	return out
}

// Validate проверяет, что каждая работа назначена ровно один раз.
func (sol *Solution) Validate() error {
	seen := make([]int, sol.inst.NumJobs())
	for i := range seen {
		seen[i] = -1
	}
	for m, s := range sol.schedules {
		for _, job := range s.jobs {
			if seen[job] >= 0 {
				return fmt.Errorf("%w: job %d on machines %d and %d", ErrDuplicateJob, job, seen[job], m)
			}
			seen[job] = m
		}
	}
	for job, m := range seen {
		if m < 0 {
			return fmt.Errorf("job %d is not assigned", job)
		}
	}
	return nil
}

func (sol *Solution) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Solution (Cmax=%d):\n", sol.Makespan())
	for _, s := range sol.schedules {
		b.WriteString("  ")
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	return b.String()
}
