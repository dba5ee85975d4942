package bench

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lahcPMS/internal/opt"
	"lahcPMS/internal/pms"
)

type Algorithm struct {
	Name    string
	Factory func(seed int64) opt.Optimizer
}

// Case - параметры генерации случайного экземпляра.
type Case struct {
	Jobs         int
	Machines     int
	InstanceSeed int64

	MaxProcessing int
	MaxSetup      int
	ReleaseFactor float64
}

// RunRecord - результат одного запуска.
type RunRecord struct {
	RunID    uuid.UUID
	Algo     string
	Jobs     int
	Machines int
	Seed     int64

	InitialMakespan int
	FinalMakespan   int
	ImprovementPct  float64
	Iterations      int
	LastImprovement int
	ExecTime        time.Duration
}

type Record struct {
	Algo     string
	Jobs     int
	Machines int
	Runs     int

	TimeBestMs float64
	TimeMeanMs float64
	TimeStdMs  float64

	MakespanBest int
	MakespanMean float64
	MakespanStd  float64

	ImprovementMean float64
	ImprovementStd  float64

	// Отдельные запуски в порядке сидов
	RunRecords []RunRecord
}

type Runner struct {
	Runs          int
	BaseSeed      int64
	PerRunTimeout time.Duration // 0 = no timeout
}

// Instance строит экземпляр задачи для конфигурации. Нулевые параметры
// генератора заменяются значениями из статьи.
func (c Case) Instance() *pms.Instance {
	maxP, maxS, f := c.MaxProcessing, c.MaxSetup, c.ReleaseFactor
	if maxP <= 0 {
		maxP = 99
	}
	if maxS <= 0 {
		maxS = 99
	}
	if f <= 0 {
		f = 0.5
	}
	return pms.RandomInstance(c.Jobs, c.Machines, maxP, maxS, f, randForSeed(c.InstanceSeed))
}

func (r Runner) RunCase(ctx context.Context, c Case, algo Algorithm) (Record, error) {
	if r.Runs <= 0 {
		return Record{}, fmt.Errorf("runs должно быть > 0 (получено %d)", r.Runs)
	}
	inst := c.Instance()

	makespans := make([]int, 0, r.Runs)
	timesMs := make([]float64, 0, r.Runs)
	improvements := make([]float64, 0, r.Runs)
	runs := make([]RunRecord, 0, r.Runs)

	for i := 0; i < r.Runs; i++ {
		runSeed := r.BaseSeed + int64(i)

		op := algo.Factory(runSeed)
		if op == nil {
			return Record{}, fmt.Errorf("run %d: factory for %s returned nil", i, algo.Name)
		}

		runCtx := ctx
		cancel := func() {}
		if r.PerRunTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, r.PerRunTimeout)
		}
		start := time.Now()
		res, err := op.Solve(runCtx, inst)
		dur := time.Since(start)
		cancel()

		// Таймаут запуска не ошибка: решатель вернул лучшее найденное решение
		if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil && res.Solution != nil {
			err = nil
		}
		if err != nil && runCtx.Err() != nil {
			return Record{}, fmt.Errorf("run %d: cancelled/timeout: %w", i, err)
		}
		if err != nil {
			return Record{}, fmt.Errorf("run %d: solve error: %w", i, err)
		}
		if res.Solution == nil {
			return Record{}, fmt.Errorf("run %d: solver returned no solution", i)
		}
		if err := res.Solution.Validate(); err != nil {
			return Record{}, fmt.Errorf("run %d: invalid solution: %w", i, err)
		}

		makespans = append(makespans, res.Makespan)
		timesMs = append(timesMs, float64(dur.Microseconds())/1000.0)
		improvements = append(improvements, res.Improvement())
		runs = append(runs, RunRecord{
			RunID:           uuid.New(),
			Algo:            algo.Name,
			Jobs:            c.Jobs,
			Machines:        c.Machines,
			Seed:            runSeed,
			InitialMakespan: res.InitialMakespan,
			FinalMakespan:   res.Makespan,
			ImprovementPct:  res.Improvement(),
			Iterations:      res.Iterations,
			LastImprovement: res.LastImprovement,
			ExecTime:        dur,
		})
	}

	msStats := CalcStats(makespans)
	tStats := CalcStats(timesMs)
	impStats := CalcStats(improvements)

	return Record{
		Algo:     algo.Name,
		Jobs:     c.Jobs,
		Machines: c.Machines,
		Runs:     r.Runs,

		TimeBestMs: tStats.Best,
		TimeMeanMs: tStats.Mean,
		TimeStdMs:  tStats.Std,

		MakespanBest: int(msStats.Best),
		MakespanMean: msStats.Mean,
		MakespanStd:  msStats.Std,

		ImprovementMean: impStats.Mean,
		ImprovementStd:  impStats.Std,

		RunRecords: runs,
	}, nil
}

func WriteCSV(path string, records []Record) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"algo", "jobs", "machines", "runs",
		"time_best_ms", "time_mean_ms", "time_std_ms",
		"makespan_best", "makespan_mean", "makespan_std",
		"improvement_mean_pct", "improvement_std_pct",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.Algo,
			itoa(r.Jobs),
			itoa(r.Machines),
			itoa(r.Runs),

			ftoa(r.TimeBestMs),
			ftoa(r.TimeMeanMs),
			ftoa(r.TimeStdMs),

			itoa(r.MakespanBest),
			ftoa(r.MakespanMean),
			ftoa(r.MakespanStd),

			ftoa(r.ImprovementMean),
			ftoa(r.ImprovementStd),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteRunsCSV пишет по строке на каждый запуск.
func WriteRunsCSV(path string, records []Record) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"run_id", "algo", "jobs", "machines",
		"initial_makespan", "final_makespan", "improvement_pct",
		"iterations", "last_improvement_iter", "exec_time_ms",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		for _, run := range r.RunRecords {
			row := []string{
				run.RunID.String(),
				run.Algo,
				itoa(run.Jobs),
				itoa(run.Machines),
				itoa(run.InitialMakespan),
				itoa(run.FinalMakespan),
				ftoa(run.ImprovementPct),
				itoa(run.Iterations),
				itoa(run.LastImprovement),
				ftoa(float64(run.ExecTime.Microseconds()) / 1000.0),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}
