package u256

// Ring represents the behavior of a fixed-width number living on a cyclic
// ring, where subtraction wraps around instead of failing.
type Ring[T any] interface {
	WrappingSub(other T) T
	Cmp(other T) int
}

// Unsigned is the set of native fixed-width unsigned integers. Go already
// performs wraparound arithmetic on these.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// BidirectionalDistance returns the shorter arc between a and b on the ring,
// min(a-b, b-a) with both subtractions wrapping.
func BidirectionalDistance[T Ring[T]](a, b T) T {
	diff := a.WrappingSub(b)
	diff2 := b.WrappingSub(a)

	if diff.Cmp(diff2) <= 0 {
		return diff
	}
	return diff2
}

// BidirectionalDistanceUint is BidirectionalDistance for native unsigned
// integers such as the u64 solution range.
func BidirectionalDistanceUint[T Unsigned](a, b T) T {
	return min(a-b, b-a)
}
