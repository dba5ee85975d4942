package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"lahcPMS/internal/config"
	"lahcPMS/internal/lahc"
	"lahcPMS/internal/logging"
	"lahcPMS/internal/pms"
	"lahcPMS/internal/report"
)

func main() {
	fs := pflag.NewFlagSet("lahc", pflag.ExitOnError)
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Конфликт в конфигурации:", err)
		os.Exit(2)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка логгера:", err)
		os.Exit(2)
	}

	var inst *pms.Instance
	if cfg.Paper {
		inst = pms.PaperInstance()
	} else {
		inst, err = pms.LoadInstance(cfg.Instance)
		if err != nil {
			logger.Error(err, "Failed to load instance", "path", cfg.Instance)
			os.Exit(1)
		}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("Instance loaded", "jobs", inst.NumJobs(), "machines", inst.NumMachines(), "seed", seed)

	solver, err := lahc.New(cfg.LAHC, rand.New(rand.NewSource(seed)))
	if err != nil {
		logger.Error(err, "Invalid LAHC configuration")
		os.Exit(2)
	}
	solver.Log = logger.WithName("lahc")

	// Ctrl+C прерывает поиск, лучшее найденное решение всё равно выводится
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := solver.Solve(ctx, inst)
	if err != nil && (res.Solution == nil || !interrupted(err)) {
		logger.Error(err, "LAHC failed")
		os.Exit(1)
	}
	if err != nil {
		logger.Info("Search interrupted, reporting best solution", "reason", err.Error())
	}

	var w io.Writer = os.Stdout
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			logger.Error(err, "Failed to create output", "path", cfg.Output)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	switch cfg.Format {
	case config.FormatGantt:
		err = report.Gantt(w, res.Solution)
	case config.FormatYAML:
		err = report.WriteYAML(w, res.Solution)
	default:
		err = report.Detailed(w, res.Solution)
	}
	if err != nil {
		logger.Error(err, "Failed to write report")
		os.Exit(1)
	}

	if cfg.Format != config.FormatYAML {
		fmt.Fprintf(w, "Initial makespan: %d, final makespan: %d, improvement: %.2f%%, iterations: %d, time: %s\n",
			res.InitialMakespan, res.Makespan, res.Improvement(), res.Iterations, res.Duration.Round(time.Millisecond))
	}
}

// interrupted сообщает, что поиск остановлен сигналом или таймаутом,
// а не ошибкой операторов.
func interrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
