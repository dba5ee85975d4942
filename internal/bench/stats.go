package bench

import (
	"math"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats - сводка по серии запусков. Std - выборочное отклонение (n-1).
type Stats struct {
	N    int
	Best float64
	Mean float64
	Std  float64
}

// CalcStats считает лучшее (минимальное) значение, среднее и стандартное отклонение.
func CalcStats[T constraints.Integer | constraints.Float](values []T) Stats {
	s := Stats{N: len(values)}
	if s.N == 0 {
		return s
	}

	xs := toFloats(values)
	s.Best = floats.Min(xs)
	s.Mean = stat.Mean(xs, nil)
	if s.N >= 2 {
		s.Std = stat.StdDev(xs, nil)
	}
	if math.IsNaN(s.Std) {
		s.Std = 0
	}
	return s
}

func toFloats[T constraints.Integer | constraints.Float](values []T) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
