package lahc

import (
	"fmt"
	"time"

	"lahcPMS/internal/pms"
)

type Config struct {
	// HistoryLength - длина списка истории LH
	HistoryLength int
	// NonImprovementLimit - остановка после стольких итераций без улучшения лучшего решения
	NonImprovementLimit int

	// TimeLimit - бюджет времени; 0 => n*m/2 секунд
	TimeLimit time.Duration
	// MaxIterations - ограничение числа итераций; 0 => без ограничения
	MaxIterations int

	MaxLocalSearchPasses int

	// RecordTrace сохраняет лучший makespan после каждой итерации в Result.Trace
	RecordTrace bool
}

func DefaultConfig() Config {
	return Config{
		HistoryLength:        30,
		NonImprovementLimit:  1000,
		TimeLimit:            0,
		MaxIterations:        0,
		MaxLocalSearchPasses: 1000,
	}
}

func (c Config) Validate() error {
	if c.HistoryLength < 1 {
		return fmt.Errorf(
			"HistoryLength должно быть >= 1 (получено %d)",
			c.HistoryLength,
		)
	}
	if c.NonImprovementLimit < 0 {
		return fmt.Errorf(
			"NonImprovementLimit должно быть >= 0 (получено %d)",
			c.NonImprovementLimit,
		)
	}
	if c.TimeLimit < 0 {
		return fmt.Errorf(
			"TimeLimit должно быть >= 0 (получено %s)",
			c.TimeLimit,
		)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf(
			"MaxIterations должно быть >= 0 (получено %d)",
			c.MaxIterations,
		)
	}
	if c.MaxLocalSearchPasses <= 0 {
		return fmt.Errorf(
			"MaxLocalSearchPasses должно быть > 0 (получено %d)",
			c.MaxLocalSearchPasses,
		)
	}
	return nil
}

// Budget возвращает бюджет времени для экземпляра.
func (c Config) Budget(inst *pms.Instance) time.Duration {
	if c.TimeLimit > 0 {
		return c.TimeLimit
	}
	return time.Duration(inst.NumJobs()*inst.NumMachines()) * time.Second / 2
}
