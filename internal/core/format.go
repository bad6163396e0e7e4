package core

import (
	"math"
	"strconv"
)

// FormatPythonFloat renders f the way CPython's str()/repr() renders a
// float: the shortest decimal string that round-trips to the same
// IEEE-754 value, with a mandatory fractional part ("10" -> "10.0"). Both
// the wallet's signed digest and the proof-of-work canonicalization in
// internal/verify were defined against this text form in the reference
// implementation; a byte-different rendering of the same amount produces a
// different signature or a different proof-of-work input, so every node
// must reproduce it identically.
func FormatPythonFloat(f float64) string {
	// CPython switches to exponent notation below 1e-4 and at 1e16 and
	// above; strconv's 'g' format would switch already at 1e6.
	var s string
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		s = strconv.FormatFloat(f, 'e', -1, 64)
	} else {
		s = strconv.FormatFloat(f, 'f', -1, 64)
	}
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' {
			return s
		}
	}
	return s + ".0"
}
