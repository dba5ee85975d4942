package pms

import (
	"fmt"
	"strings"

	"github.com/markphelps/optional"
)

// Schedule - последовательность работ одной машины с вычисленными
// временами начала и окончания. Любая мутация пересчитывает времена,
// поэтому они всегда согласованы с последовательностью.
type Schedule struct {
	inst    *Instance
	machine int
	owner   *Solution

	jobs       []int
	start      []int // по позициям
	end        []int
	completion int
}

func NewSchedule(inst *Instance, machine int) (*Schedule, error) {
	if _, err := inst.Machine(machine); err != nil {
		return nil, err
	}
	return &Schedule{inst: inst, machine: machine}, nil
}

func (s *Schedule) Machine() int { return s.machine }

// Append добавляет работу в конец последовательности.
func (s *Schedule) Append(job int) error {
	return s.InsertAt(job, len(s.jobs))
}

// InsertAt вставляет работу в позицию position ∈ [0, len].
func (s *Schedule) InsertAt(job, position int) error {
	if err := s.inst.validJob(job); err != nil {
		return err
	}
	if position < 0 || position > len(s.jobs) {
		return fmt.Errorf("%w: insert at %d (len=%d)", ErrPositionOutOfRange, position, len(s.jobs))
	}
	if s.indexOf(job) >= 0 {
		return fmt.Errorf("%w: job %d on machine %d", ErrDuplicateJob, job, s.machine)
	}
	s.jobs = append(s.jobs, 0)
	copy(s.jobs[position+1:], s.jobs[position:])
	s.jobs[position] = job
	s.changed()
	return nil
}

// Remove удаляет работу, если она есть в расписании.
func (s *Schedule) Remove(job int) bool {
	i := s.indexOf(job)
	if i < 0 {
		return false
	}
	s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
	s.changed()
	return true
}

// RemoveAt удаляет и возвращает работу в позиции position.
func (s *Schedule) RemoveAt(position int) (int, error) {
	if position < 0 || position >= len(s.jobs) {
		return NoJob, fmt.Errorf("%w: remove at %d (len=%d)", ErrPositionOutOfRange, position, len(s.jobs))
	}
	job := s.jobs[position]
	s.jobs = append(s.jobs[:position], s.jobs[position+1:]...)
	s.changed()
	return job, nil
}

// ReplaceAt ставит job на место работы в позиции position и возвращает вытесненную.
func (s *Schedule) ReplaceAt(position, job int) (int, error) {
	if err := s.inst.validJob(job); err != nil {
		return NoJob, err
	}
	if position < 0 || position >= len(s.jobs) {
		return NoJob, fmt.Errorf("%w: replace at %d (len=%d)", ErrPositionOutOfRange, position, len(s.jobs))
	}
	if i := s.indexOf(job); i >= 0 && i != position {
		return NoJob, fmt.Errorf("%w: job %d on machine %d", ErrDuplicateJob, job, s.machine)
	}
	old := s.jobs[position]
	s.jobs[position] = job
	s.changed()
	return old, nil
}

func (s *Schedule) Swap(pos1, pos2 int) error {
	n := len(s.jobs)
	if pos1 < 0 || pos1 >= n || pos2 < 0 || pos2 >= n {
		return fmt.Errorf("%w: swap %d<->%d (len=%d)", ErrPositionOutOfRange, pos1, pos2, n)
	}
	s.jobs[pos1], s.jobs[pos2] = s.jobs[pos2], s.jobs[pos1]
	s.changed()
	return nil
}

// Recompute пересчитывает времена начала/окончания по формуле:
// setupStart = max(t, r_j); start = setupStart + s_{prev,j}; end = start + p_j.
func (s *Schedule) Recompute() {
	n := len(s.jobs)
	if cap(s.start) < n {
		s.start = make([]int, n)
		s.end = make([]int, n)
	}
	s.start = s.start[:n]
	s.end = s.end[:n]

	t := 0
	prev := NoJob
	for i, job := range s.jobs {
		setupStart := t
		if r := s.inst.ReleaseDate(job); r > setupStart {
			setupStart = r
		}
		st := setupStart + s.inst.SetupTime(prev, job, s.machine)
		s.start[i] = st
		s.end[i] = st + s.inst.ProcessingTime(job, s.machine)

		t = s.end[i]
		prev = job
	}
	s.completion = t
}

// Jobs возвращает копию последовательности.
func (s *Schedule) Jobs() []int {
	out := make([]int, len(s.jobs))
	copy(out, s.jobs)
	return out
}

func (s *Schedule) JobAt(position int) (int, error) {
	if position < 0 || position >= len(s.jobs) {
		return NoJob, fmt.Errorf("%w: %d (len=%d)", ErrPositionOutOfRange, position, len(s.jobs))
	}
	return s.jobs[position], nil
}

func (s *Schedule) Len() int            { return len(s.jobs) }
func (s *Schedule) CompletionTime() int { return s.completion }

// StartTime - начало обработки работы (после переналадки); пусто, если работы нет на машине.
func (s *Schedule) StartTime(job int) optional.Int {
	if i := s.indexOf(job); i >= 0 {
		return optional.NewInt(s.start[i])
	}
	return optional.Int{}
}

func (s *Schedule) EndTime(job int) optional.Int {
	if i := s.indexOf(job); i >= 0 {
		return optional.NewInt(s.end[i])
	}
	return optional.Int{}
}

// Copy возвращает независимую копию с заново вычисленными временами.
func (s *Schedule) Copy() *Schedule {
	c := &Schedule{
		inst:    s.inst,
		machine: s.machine,
		jobs:    append(make([]int, 0, len(s.jobs)+1), s.jobs...),
	}
	c.Recompute()
	return c
}

func (s *Schedule) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "M%d: [", s.machine)
	for i, job := range s.jobs {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "J%d", job)
	}
	fmt.Fprintf(&b, "] (C=%d)", s.completion)
	return b.String()
}

func (s *Schedule) indexOf(job int) int {
	for i, j := range s.jobs {
		if j == job {
			return i
		}
	}
	return -1
}

func (s *Schedule) changed() {
	s.Recompute()
	if s.owner != nil {
		s.owner.Invalidate()
	}
}
