// Package fee implements the time-based fee calculation used by the
// settlement engine. The calculation is pure and deterministic: elapsed
// time multiplied by a rate expressed per fixed quantum, truncated
// toward zero.
package fee

import (
	"math"
	"math/bits"
)

// QuantumMS is the fixed time unit against which rates are expressed:
// a rate of N means N units of value per QuantumMS milliseconds of
// streamed time.
const QuantumMS = 10_000

// Calc returns floor(elapsedMS * rate / QuantumMS).
//
// The product is computed in 128 bits so that no overflow can occur
// before the division, regardless of how large elapsedMS and rate are.
// A quotient that does not fit in 64 bits saturates to math.MaxUint64;
// callers cap the result at the available balance anyway. Truncation is
// always toward zero; sub-quantum remainders are never rounded up.
// Callers preserve the remainder by not advancing their checkpoint
// clock when the result is zero.
func Calc(elapsedMS, rate uint64) uint64 {
	if elapsedMS == 0 || rate == 0 {
		return 0
	}

	hi, lo := bits.Mul64(elapsedMS, rate)
	if hi >= QuantumMS {
		// bits.Div64 panics when the quotient overflows 64 bits.
		return math.MaxUint64
	}
	quo, _ := bits.Div64(hi, lo, QuantumMS)
	return quo
}
