package pms

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInstance    = errors.New("invalid instance")
	ErrJobOutOfRange      = errors.New("job id out of range")
	ErrMachineOutOfRange  = errors.New("machine id out of range")
	ErrPositionOutOfRange = errors.New("position out of range")
	ErrDuplicateJob       = errors.New("job already scheduled")
)

// NoJob обозначает отсутствие предшествующей работы на машине.
const NoJob = -1

type Job struct {
	ID          int
	ReleaseDate int
}

type Machine struct {
	ID int
}

// Instance - неизменяемые данные задачи R|r_j, s_ijk|Cmax.
type Instance struct {
	jobs     []Job
	machines []Machine

	// procTimes[job*machines+machine]
	procTimes []int
	// setupTimes[(machine*jobs+prev)*jobs+next]; диагональ - начальная переналадка
	setupTimes []int
}

// NewInstance создаёт экземпляр из плоских массивов.
// procTimes имеет длину jobs*machines (строка на работу),
// setupTimes - machines*jobs*jobs (матрица jobs x jobs на каждую машину).
func NewInstance(jobs, machines int, releaseDates, procTimes, setupTimes []int) (*Instance, error) {
	if jobs <= 0 {
		return nil, fmt.Errorf("%w: jobs must be > 0 (got %d)", ErrInvalidInstance, jobs)
	}
	if machines <= 0 {
		return nil, fmt.Errorf("%w: machines must be > 0 (got %d)", ErrInvalidInstance, machines)
	}
	if len(releaseDates) != jobs {
		return nil, fmt.Errorf("%w: releaseDates length must be %d (got %d)", ErrInvalidInstance, jobs, len(releaseDates))
	}
	if len(procTimes) != jobs*machines {
		return nil, fmt.Errorf("%w: procTimes length must be jobs*machines=%d (got %d)", ErrInvalidInstance, jobs*machines, len(procTimes))
	}
	if len(setupTimes) != machines*jobs*jobs {
		return nil, fmt.Errorf("%w: setupTimes length must be machines*jobs*jobs=%d (got %d)", ErrInvalidInstance, machines*jobs*jobs, len(setupTimes))
	}

	inst := &Instance{
		jobs:       make([]Job, jobs),
		machines:   make([]Machine, machines),
		procTimes:  append([]int(nil), procTimes...),
		setupTimes: append([]int(nil), setupTimes...),
	}
	for j, r := range releaseDates {
		if r < 0 {
			return nil, fmt.Errorf("%w: releaseDates[%d] must be >= 0 (got %d)", ErrInvalidInstance, j, r)
		}
		inst.jobs[j] = Job{ID: j, ReleaseDate: r}
	}
	for m := range inst.machines {
		inst.machines[m] = Machine{ID: m}
	}
	for i, v := range inst.procTimes {
		if v < 0 {
			return nil, fmt.Errorf("%w: procTimes[%d] must be >= 0 (got %d)", ErrInvalidInstance, i, v)
		}
	}
	for i, v := range inst.setupTimes {
		if v < 0 {
			return nil, fmt.Errorf("%w: setupTimes[%d] must be >= 0 (got %d)", ErrInvalidInstance, i, v)
		}
	}
	return inst, nil
}

// FromMatrices - удобная обёртка над NewInstance:
// proc[job][machine], setup[machine][prev][next].
func FromMatrices(releaseDates []int, proc [][]int, setup [][][]int) (*Instance, error) {
	jobs := len(releaseDates)
	if len(proc) != jobs {
		return nil, fmt.Errorf("%w: processing rows must be %d (got %d)", ErrInvalidInstance, jobs, len(proc))
	}
	if jobs == 0 || len(proc[0]) == 0 {
		return nil, fmt.Errorf("%w: empty processing table", ErrInvalidInstance)
	}
	machines := len(proc[0])

	pt := make([]int, 0, jobs*machines)
	for j, row := range proc {
		if len(row) != machines {
			return nil, fmt.Errorf("%w: processing row %d must have %d values (got %d)", ErrInvalidInstance, j, machines, len(row))
		}
		pt = append(pt, row...)
	}

	if len(setup) != machines {
		return nil, fmt.Errorf("%w: setup matrices must be %d (got %d)", ErrInvalidInstance, machines, len(setup))
	}
	st := make([]int, 0, machines*jobs*jobs)
	for m, mat := range setup {
		if len(mat) != jobs {
			return nil, fmt.Errorf("%w: setup matrix %d must have %d rows (got %d)", ErrInvalidInstance, m, jobs, len(mat))
		}
		for i, row := range mat {
			if len(row) != jobs {
				return nil, fmt.Errorf("%w: setup matrix %d row %d must have %d values (got %d)", ErrInvalidInstance, m, i, jobs, len(row))
			}
			st = append(st, row...)
		}
	}

	return NewInstance(jobs, machines, releaseDates, pt, st)
}

func (inst *Instance) NumJobs() int     { return len(inst.jobs) }
func (inst *Instance) NumMachines() int { return len(inst.machines) }

func (inst *Instance) Job(id int) (Job, error) {
	if id < 0 || id >= len(inst.jobs) {
		return Job{}, fmt.Errorf("%w: %d (jobs=%d)", ErrJobOutOfRange, id, len(inst.jobs))
	}
	return inst.jobs[id], nil
}

func (inst *Instance) Machine(id int) (Machine, error) {
	if id < 0 || id >= len(inst.machines) {
		return Machine{}, fmt.Errorf("%w: %d (machines=%d)", ErrMachineOutOfRange, id, len(inst.machines))
	}
	return inst.machines[id], nil
}

// Jobs возвращает копию списка работ в порядке возрастания id.
func (inst *Instance) Jobs() []Job {
	return append([]Job(nil), inst.jobs...)
}

func (inst *Instance) ReleaseDate(job int) int {
	return inst.jobs[job].ReleaseDate
}

func (inst *Instance) ProcessingTime(job, machine int) int {
	return inst.procTimes[job*len(inst.machines)+machine]
}

// SetupTime возвращает s_{prev,next}^machine. Для prev == NoJob
// используется диагональный элемент s_{next,next}^machine.
func (inst *Instance) SetupTime(prev, next, machine int) int {
	if prev == NoJob {
		prev = next
	}
	n := len(inst.jobs)
	return inst.setupTimes[(machine*n+prev)*n+next]
}

func (inst *Instance) validJob(job int) error {
	if job < 0 || job >= len(inst.jobs) {
		return fmt.Errorf("%w: %d (jobs=%d)", ErrJobOutOfRange, job, len(inst.jobs))
	}
	return nil
}

func (inst *Instance) String() string {
	return fmt.Sprintf("Instance[%d jobs, %d machines]", len(inst.jobs), len(inst.machines))
}
