package localsearch

import "fmt"

type Config struct {
	// MaxPasses ограничивает число полных проходов пяти операторов
	MaxPasses int
}

func DefaultConfig() Config {
	return Config{MaxPasses: 1000}
}

func (c Config) Validate() error {
	if c.MaxPasses <= 0 {
		return fmt.Errorf(
			"MaxPasses должно быть > 0 (получено %d)",
			c.MaxPasses,
		)
	}
	return nil
}
