// Package logging строит logr.Logger поверх zap.
package logging

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Уровни детализации для logger.V(...)
const (
	INFO  = 0
	DEBUG = 1
	TRACE = 2
)

// ParseLevel переводит имя уровня в уровень детализации logr.
func ParseLevel(level string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return INFO, nil
	case "debug":
		return DEBUG, nil
	case "trace":
		return TRACE, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (info|debug|trace)", level)
	}
}

// NewLogger создаёт logr.Logger с заданным уровнем; development включает
// консольный вывод вместо JSON.
func NewLogger(level string, development bool) (logr.Logger, error) {
	v, err := ParseLevel(level)
	if err != nil {
		return logr.Discard(), err
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	// logr V(n) соответствует уровню zap -n
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-v))

	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zl), nil
}

// NewTestLogger возвращает консольный логгер уровня DEBUG для тестов.
func NewTestLogger() logr.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-DEBUG))
	zl, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return zapr.NewLogger(zl)
}
