package heap

import (
	"math"
	"math/big"
)

// LongIntData backs DataLongInt: the arbitrary-precision integer a
// spec.md §6.4 64-bit Int promotes to on overflow. Grounded on the
// teacher's own PyInt.BigValue use of math/big for the identical purpose
// (see DESIGN.md).
type LongIntData struct {
	Value *big.Int
}

// DecimalData backs DataDecimal. decimal's module-level arithmetic
// functions are an external library module per spec.md §1; this core
// only owns the heap slot's storage and display contract.
type DecimalData struct {
	Unscaled *big.Int
	Exponent int32 // value == Unscaled * 10^Exponent
}

// FractionData backs DataFraction, stored as a reduced big.Rat.
type FractionData struct {
	Value *big.Rat
}

// NewLongInt promotes a plain int64 addition/multiplication overflow to
// an arbitrary-precision LongInt HeapData (spec.md §6.4).
func NewLongInt(v *big.Int) HeapData {
	return HeapData{Kind: DataLongInt, Payload: &LongIntData{Value: v}}
}

// AddInt64Overflowing adds a and b, reporting whether the 64-bit result
// overflowed (in which case the caller should promote to LongInt via
// NewLongInt on the big.Int sum computed separately).
func AddInt64Overflowing(a, b int64) (int64, bool) {
	sum := a + b
	overflow := (b > 0 && sum < a) || (b < 0 && sum > a)
	return sum, overflow
}

// MulInt64Overflowing multiplies a and b, reporting overflow.
func MulInt64Overflowing(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, true
	}
	prod := a * b
	if prod/b != a {
		return 0, true
	}
	return prod, false
}
