// Package config собирает параметры запуска cmd/lahc из флагов,
// переменных окружения LAHC_* и необязательного файла конфигурации.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"lahcPMS/internal/lahc"
)

const EnvPrefix = "LAHC"

// Форматы вывода решения
const (
	FormatText  = "text"
	FormatGantt = "gantt"
	FormatYAML  = "yaml"
)

type Config struct {
	Instance string
	Paper    bool
	Seed     int64

	LAHC lahc.Config

	LogLevel       string
	LogDevelopment bool

	Format string
	Output string
}

// RegisterFlags регистрирует флаги со значениями по умолчанию.
func RegisterFlags(fs *pflag.FlagSet) {
	def := lahc.DefaultConfig()

	fs.String("config", "", "путь к файлу конфигурации (yaml|json|toml)")
	fs.String("instance", "", "путь к файлу экземпляра")
	fs.Bool("paper", false, "решить пример из статьи вместо файла")
	fs.Int64("seed", 0, "сид генератора случайных чисел (0 - от времени)")
	fs.Int("history_length", def.HistoryLength, "длина списка истории LAHC")
	fs.Int("non_improvement_limit", def.NonImprovementLimit, "итераций без улучшения до остановки")
	fs.Duration("time_limit", def.TimeLimit, "бюджет времени (0 - n*m/2 секунд)")
	fs.Int("max_iterations", def.MaxIterations, "ограничение итераций (0 - без ограничения)")
	fs.String("log_level", "info", "уровень логирования: info | debug | trace")
	fs.Bool("log_development", false, "консольный формат логов")
	fs.String("format", FormatText, "формат вывода: text | gantt | yaml")
	fs.String("output", "", "файл для вывода (пусто - stdout)")
}

// Load читает конфигурацию: флаги > окружение > файл > значения по умолчанию.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		Instance: v.GetString("instance"),
		Paper:    v.GetBool("paper"),
		Seed:     v.GetInt64("seed"),
		LAHC: lahc.Config{
			HistoryLength:        v.GetInt("history_length"),
			NonImprovementLimit:  v.GetInt("non_improvement_limit"),
			TimeLimit:            v.GetDuration("time_limit"),
			MaxIterations:        v.GetInt("max_iterations"),
			MaxLocalSearchPasses: lahc.DefaultConfig().MaxLocalSearchPasses,
		},
		LogLevel:       v.GetString("log_level"),
		LogDevelopment: v.GetBool("log_development"),
		Format:         v.GetString("format"),
		Output:         v.GetString("output"),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Instance == "" && !c.Paper {
		return fmt.Errorf("нужно указать --instance или --paper")
	}
	switch c.Format {
	case FormatText, FormatGantt, FormatYAML:
		// ok
	default:
		return fmt.Errorf("неизвестный формат вывода %q", c.Format)
	}
	return c.LAHC.Validate()
}
