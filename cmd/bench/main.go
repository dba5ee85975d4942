package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	flag "github.com/spf13/pflag"

	"lahcPMS/internal/bench"
	"lahcPMS/internal/lahc"
	"lahcPMS/internal/logging"
	"lahcPMS/internal/opt"
	"lahcPMS/internal/sa"
)

// Фабрики

func newLAHCFactory(cfg lahc.Config, log logr.Logger) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, err := lahc.New(cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			return nil
		}
		solver.Log = log.WithValues("seed", seed)
		return solver
	}
}

func newSAFactory(cfg sa.Config, log logr.Logger) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, err := sa.New(cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			return nil
		}
		solver.Log = log.WithValues("seed", seed)
		return solver
	}
}

func main() {
	// CLI флаги для настройки параметров алгоритмов и политики запуска
	var (
		out          = flag.String("out", "artifacts/results.csv", "путь к выходному CSV-файлу")
		runsOut      = flag.String("runs_out", "artifacts/runs.csv", "путь к CSV-файлу с отдельными запусками (пусто - не писать)")
		pairs        = flag.String("pairs", "10x2,20x4,50x10", "конфигурации: количество работ Х количество машин (через запятую)")
		algos        = flag.String("algos", "LAHC,SA", "список алгоритмов: LAHC, SA (через запятую)")
		runs         = flag.Int("runs", 10, "количество запусков каждого алгоритма (с разными сидами)")
		baseSeed     = flag.Int64("seed", 1000, "базовый сид для запусков алгоритмов")
		instanceSeed = flag.Int64("instance_seed", 777, "базовый сид для генерации экземпляров задачи (фиксирован для конфигурации)")
		perRunTO     = flag.Duration("per_run_timeout", 0, "таймаут одного запуска; 0 - без ограничения")
		logLevel     = flag.String("log_level", "info", "уровень логирования: info | debug | trace")

		// --- Генератор экземпляров ---
		maxProc       = flag.Int("max_processing", 99, "максимальное время обработки")
		maxSetup      = flag.Int("max_setup", 99, "максимальное время переналадки")
		releaseFactor = flag.Float64("release_factor", 0.5, "коэффициент разброса дат готовности")

		// --- LAHC ---
		lahcHistory = flag.Int("lahc_history", 30, "длина списка истории")
		lahcNonImpr = flag.Int("lahc_non_improvement", 1000, "итераций без улучшения до остановки")
		lahcTime    = flag.Duration("lahc_time_limit", 2*time.Second, "бюджет времени; 0 - n*m/2 секунд")
		lahcIter    = flag.Int("lahc_iter", 0, "ограничение итераций (0 - без ограничения)")

		// --- Алгоритм имитации отжига ---
		saIterPerJob = flag.Int("sa_iter_per_job", 20, "количество итераций на одну работу (используется, если sa_iter == 0)")
		saIter       = flag.Int("sa_iter", 0, "общее количество итераций (0 => sa_iter_per_job × nJobs)")
		saT0         = flag.Float64("sa_t0", 50.0, "начальная температура")
		saTmin       = flag.Float64("sa_tmin", 0.5, "конечная температура")
		saAlpha      = flag.Float64("sa_alpha", 0.98, "коэффициент охлаждения (alpha)")
	)
	flag.Parse()

	ctx := context.Background()

	logger, err := logging.NewLogger(*logLevel, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Конфликт:", err)
		os.Exit(2)
	}

	cases, err := parsePairs(*pairs, *instanceSeed)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Конфликт:", err)
		os.Exit(2)
	}
	for i := range cases {
		cases[i].MaxProcessing = *maxProc
		cases[i].MaxSetup = *maxSetup
		cases[i].ReleaseFactor = *releaseFactor
	}

	lahcCfg := lahc.DefaultConfig()
	lahcCfg.HistoryLength = *lahcHistory
	lahcCfg.NonImprovementLimit = *lahcNonImpr
	lahcCfg.TimeLimit = *lahcTime
	lahcCfg.MaxIterations = *lahcIter
	if err := lahcCfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Конфликт в конфигурации LAHC:", err)
		os.Exit(2)
	}

	saCfg := sa.DefaultConfig()
	saCfg.Iterations = *saIter
	saCfg.IterationsPerJob = *saIterPerJob
	saCfg.InitialTemp = *saT0
	saCfg.FinalTemp = *saTmin
	saCfg.Alpha = *saAlpha
	if err := saCfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Конфликт в конфигурации алгоритма имитации отжига:", err)
		os.Exit(2)
	}

	available := map[string]bench.Algorithm{
		"LAHC": {Name: "LAHC", Factory: newLAHCFactory(lahcCfg, logger.WithName("lahc"))},
		"SA":   {Name: "SA", Factory: newSAFactory(saCfg, logger.WithName("sa"))},
	}

	var selected []bench.Algorithm
	for _, a := range splitCSV(*algos) {
		al, ok := available[strings.ToUpper(a)]
		if !ok {
			fmt.Fprintf(os.Stderr, "Алгоритм не предоставлен в программе %q; доступные: %v\n", a, keys(available))
			os.Exit(2)
		}
		selected = append(selected, al)
	}

	runner := bench.Runner{
		Runs:          *runs,
		BaseSeed:      *baseSeed,
		PerRunTimeout: *perRunTO,
	}

	var records []bench.Record
	for _, c := range cases {
		for _, a := range selected {
			logger.Info("Benchmark case started", "algo", a.Name, "jobs", c.Jobs, "machines", c.Machines, "runs", runner.Runs)

			rec, err := runner.RunCase(ctx, c, a)
			if err != nil {
				logger.Error(err, "Benchmark case failed", "algo", a.Name, "jobs", c.Jobs, "machines", c.Machines)
				os.Exit(1)
			}
			records = append(records, rec)

			fmt.Printf("%s %dx%d  Значение целевой функции: лучшее=%d среднее=%.2f стандартное отклонение=%.2f | улучшение=%.2f%% | Время: среднее=%.2fms среднее отклонение=%.2fms\n",
				a.Name, c.Jobs, c.Machines,
				rec.MakespanBest, rec.MakespanMean, rec.MakespanStd,
				rec.ImprovementMean,
				rec.TimeMeanMs, rec.TimeStdMs,
			)
		}
	}

	if err := bench.WriteCSV(*out, records); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка при записи в CSV:", err)
		os.Exit(1)
	}
	fmt.Println("Saved:", *out)

	if *runsOut != "" {
		if err := bench.WriteRunsCSV(*runsOut, records); err != nil {
			fmt.Fprintln(os.Stderr, "Ошибка при записи в CSV:", err)
			os.Exit(1)
		}
		fmt.Println("Saved:", *runsOut)
	}
}

// helpers

func parsePairs(s string, baseInstanceSeed int64) ([]bench.Case, error) {
	parts := splitCSV(s)
	cases := make([]bench.Case, 0, len(parts))

	for i, p := range parts {
		jm := strings.Split(p, "x")
		if len(jm) != 2 {
			return nil, fmt.Errorf("пара %q невалидной схемы, пример: 20x4", p)
		}
		jobs, err := strconv.Atoi(strings.TrimSpace(jm[0]))
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга количества работ: %w", p, err)
		}
		machines, err := strconv.Atoi(strings.TrimSpace(jm[1]))
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга количества машин: %w", p, err)
		}
		if jobs <= 0 || machines <= 0 {
			return nil, fmt.Errorf("пара %q: количество работ и машин должно быть > 0", p)
		}

		seed := baseInstanceSeed + int64(i)*10_000 + int64(jobs)*100 + int64(machines)

		cases = append(cases, bench.Case{
			Jobs:         jobs,
			Machines:     machines,
			InstanceSeed: seed,
		})
	}

	return cases, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func keys(m map[string]bench.Algorithm) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
