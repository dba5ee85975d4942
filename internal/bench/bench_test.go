package bench

import (
	"context"
	"encoding/csv"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lahcPMS/internal/lahc"
	"lahcPMS/internal/opt"
	"lahcPMS/internal/pms"
)

func TestCalcStats(t *testing.T) {
	s := CalcStats([]int{4, 2, 6})
	assert.Equal(t, 3, s.N)
	assert.Equal(t, 2.0, s.Best)
	assert.InDelta(t, 4.0, s.Mean, 1e-9)
	assert.InDelta(t, 2.0, s.Std, 1e-9)

	f := CalcStats([]float64{1.5})
	assert.Equal(t, 1.5, f.Best)
	assert.Equal(t, 1.5, f.Mean)
	assert.Zero(t, f.Std)

	assert.Equal(t, Stats{}, CalcStats([]int(nil)))
}

func lahcAlgorithm() Algorithm {
	cfg := lahc.DefaultConfig()
	cfg.MaxIterations = 10
	return Algorithm{
		Name: "LAHC",
		Factory: func(seed int64) opt.Optimizer {
			s, _ := lahc.New(cfg, rand.New(rand.NewSource(seed)))
			return s
		},
	}
}

type failingOptimizer struct{}

func (failingOptimizer) Solve(context.Context, *pms.Instance) (opt.Result, error) {
	return opt.Result{}, errors.New("boom")
}

func TestRunCase(t *testing.T) {
	r := Runner{Runs: 3, BaseSeed: 10}
	c := Case{Jobs: 8, Machines: 2, InstanceSeed: 5, MaxProcessing: 20, MaxSetup: 5, ReleaseFactor: 0.5}

	rec, err := r.RunCase(context.Background(), c, lahcAlgorithm())
	require.NoError(t, err)

	assert.Equal(t, "LAHC", rec.Algo)
	assert.Equal(t, 3, rec.Runs)
	require.Len(t, rec.RunRecords, 3)
	assert.LessOrEqual(t, float64(rec.MakespanBest), rec.MakespanMean)

	ids := map[uuid.UUID]bool{}
	for i, run := range rec.RunRecords {
		assert.Equal(t, int64(10+i), run.Seed)
		assert.LessOrEqual(t, run.FinalMakespan, run.InitialMakespan)
		assert.GreaterOrEqual(t, run.FinalMakespan, rec.MakespanBest)
		assert.Equal(t, 10, run.Iterations)
		ids[run.RunID] = true
	}
	assert.Len(t, ids, 3)
}

func TestRunCase_Errors(t *testing.T) {
	c := Case{Jobs: 4, Machines: 2, InstanceSeed: 1}

	_, err := Runner{Runs: 0}.RunCase(context.Background(), c, lahcAlgorithm())
	assert.Error(t, err)

	failing := Algorithm{Name: "X", Factory: func(int64) opt.Optimizer { return failingOptimizer{} }}
	_, err = Runner{Runs: 1}.RunCase(context.Background(), c, failing)
	assert.ErrorContains(t, err, "boom")
}

func TestCase_InstanceIsDeterministic(t *testing.T) {
	c := Case{Jobs: 6, Machines: 2, InstanceSeed: 3}
	a, b := c.Instance(), c.Instance()
	for j := 0; j < 6; j++ {
		assert.Equal(t, a.ReleaseDate(j), b.ReleaseDate(j))
		assert.Equal(t, a.ProcessingTime(j, 1), b.ProcessingTime(j, 1))
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteCSV(t *testing.T) {
	rec, err := Runner{Runs: 2, BaseSeed: 1}.RunCase(context.Background(),
		Case{Jobs: 5, Machines: 2, InstanceSeed: 9}, lahcAlgorithm())
	require.NoError(t, err)

	dir := t.TempDir()
	aggPath := filepath.Join(dir, "out", "results.csv")
	runsPath := filepath.Join(dir, "out", "runs.csv")
	require.NoError(t, WriteCSV(aggPath, []Record{rec}))
	require.NoError(t, WriteRunsCSV(runsPath, []Record{rec}))

	agg := readCSV(t, aggPath)
	require.Len(t, agg, 2)
	assert.Equal(t, "algo", agg[0][0])
	assert.Equal(t, []string{"LAHC", "5", "2", "2"}, agg[1][:4])

	runs := readCSV(t, runsPath)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{
		"run_id", "algo", "jobs", "machines",
		"initial_makespan", "final_makespan", "improvement_pct",
		"iterations", "last_improvement_iter", "exec_time_ms",
	}, runs[0])
	for _, row := range runs[1:] {
		_, err := uuid.Parse(row[0])
		assert.NoError(t, err)
		assert.Equal(t, "LAHC", row[1])
		assert.Equal(t, "10", row[7])
	}
}
