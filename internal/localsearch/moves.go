package localsearch

import (
	"lahcPMS/internal/pms"
)

// move - обратимое изменение решения. revert является точной
// структурной инверсией apply (те же машины и позиции).
type move interface {
	apply(sol *pms.Solution) error
	revert(sol *pms.Solution) error
}

// swapMove - обмен позиций i и j на одной машине.
type swapMove struct {
	machine int
	i, j    int
}

func (mv *swapMove) apply(sol *pms.Solution) error {
	return sol.MustSchedule(mv.machine).Swap(mv.i, mv.j)
}

func (mv *swapMove) revert(sol *pms.Solution) error {
	return sol.MustSchedule(mv.machine).Swap(mv.i, mv.j)
}

// relocateMove переносит работу из позиции fromPos машины from в позицию toPos машины to.
type relocateMove struct {
	from, fromPos int
	to, toPos     int
}

func (mv *relocateMove) apply(sol *pms.Solution) error {
	return transfer(sol.MustSchedule(mv.from), mv.fromPos, sol.MustSchedule(mv.to), mv.toPos)
}

func (mv *relocateMove) revert(sol *pms.Solution) error {
	return transfer(sol.MustSchedule(mv.to), mv.toPos, sol.MustSchedule(mv.from), mv.fromPos)
}

// transfer атомарен: при ошибке вставки работа возвращается на место.
func transfer(src *pms.Schedule, srcPos int, dst *pms.Schedule, dstPos int) error {
	job, err := src.RemoveAt(srcPos)
	if err != nil {
		return err
	}
	if err := dst.InsertAt(job, dstPos); err != nil {
		if rerr := src.InsertAt(job, srcPos); rerr != nil {
			panic(rerr)
		}
		return err
	}
	return nil
}

// exchangeMove обменивает работы в позиции p1 машины m1 и позиции p2 машины m2.
// Ход сам себе обратен.
type exchangeMove struct {
	m1, p1 int
	m2, p2 int
}

func (mv *exchangeMove) apply(sol *pms.Solution) error {
	s1 := sol.MustSchedule(mv.m1)
	s2 := sol.MustSchedule(mv.m2)

	job2, err := s2.JobAt(mv.p2)
	if err != nil {
		return err
	}
	job1, err := s1.ReplaceAt(mv.p1, job2)
	if err != nil {
		return err
	}
	if _, err := s2.ReplaceAt(mv.p2, job1); err != nil {
		if _, rerr := s1.ReplaceAt(mv.p1, job1); rerr != nil {
			panic(rerr)
		}
		return err
	}
	return nil
}

func (mv *exchangeMove) revert(sol *pms.Solution) error {
	return mv.apply(sol)
}

// trial применяет ход, вызывает measure и откатывает ход на любом пути выхода.
func (ls *LocalSearch) trial(sol *pms.Solution, mv move, measure func()) (err error) {
	if err := mv.apply(sol); err != nil {
		return err
	}
	defer func() {
		if rerr := mv.revert(sol); rerr != nil && err == nil {
			err = rerr
		}
	}()

	ls.Evaluations++
	measure()
	return nil
}
