package mathx

// RoundDiv returns floor((a + b/2)/b), classic rounding for positives.
// b == 0 yields 0; keep to positive inputs for firmware maths.
func RoundDiv[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b/2) / b
}
