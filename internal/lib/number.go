package lib

import (
	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Integer | constraints.Float
}

// AlmostEqual reports whether b is within the relative tolerance of a
func AlmostEqual[T Number](a, b T, tolerance float64) bool {
	if a == 0 {
		return b == 0
	}
	return float64(Abs(a-b))/float64(Abs(a)) < tolerance
}

func Abs[T Number](a T) T {
	if a < 0 {
		return -a
	}
	return a
}
