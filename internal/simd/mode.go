package simd

// Mode selects between the accelerated and the scalar kernels.
type Mode uint8

const (
	// Scalar runs the plain element-wise kernels.
	Scalar Mode = iota
	// Accelerated runs the blocked/unrolled kernels. They are portable Go,
	// selected only on CPUs with a detected vector ISA.
	Accelerated
)

// String returns the string representation of a Mode.
func (m Mode) String() string {
	if m == Accelerated {
		return "accelerated"
	}
	return "scalar"
}

// Available reports whether the CPU supports the accelerated kernels.
func Available() bool {
	return activeISA != Generic
}

// SelectMode returns Accelerated when available and not forced off.
func SelectMode(forceScalar bool) Mode {
	if forceScalar || !Available() {
		return Scalar
	}
	return Accelerated
}
