package tool

import (
	"errors"
)

// ErrDivisionByZero is returned by Divide when b is 0.
var ErrDivisionByZero = errors.New("division by zero")

// Multiply returns a*b.
func Multiply(a, b int) int { return a * b }

// Add returns a+b.
func Add(a, b int) int { return a + b }

// Subtract returns a-b.
func Subtract(a, b int) int { return a - b }

// Divide returns a/b as a float.
func Divide(a, b int) (float64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return float64(a) / float64(b), nil
}
