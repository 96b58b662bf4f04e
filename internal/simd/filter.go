package simd

// Number is the element type of range-filterable columns.
type Number interface {
	~int64 | ~float64
}

// FilterRange sets dst[i] to 1 where lo <= values[i] <= hi and to 0 otherwise.
// NaN never lies in a range. The result has the length of values; dst is
// reused when it has enough capacity.
func FilterRange[T Number](values []T, lo, hi T, dst []byte, mode Mode) []byte {
	n := len(values)
	if n == 0 {
		return dst[:0]
	}
	if cap(dst) < n {
		dst = make([]byte, n)
	} else {
		dst = dst[:n]
	}
	if mode == Accelerated {
		filterRangeUnrolled(values, lo, hi, dst)
	} else {
		filterRangeGeneric(values, lo, hi, dst)
	}
	return dst
}

// filterRangeUnrolled processes 8 elements per iteration so the compiler can
// keep the comparisons in flight.
func filterRangeUnrolled[T Number](values []T, lo, hi T, dst []byte) {
	n := len(values)
	i := 0
	for ; i+8 <= n; i += 8 {
		v0, v1, v2, v3 := values[i], values[i+1], values[i+2], values[i+3]
		v4, v5, v6, v7 := values[i+4], values[i+5], values[i+6], values[i+7]

		dst[i] = boolToByte(v0 >= lo && v0 <= hi)
		dst[i+1] = boolToByte(v1 >= lo && v1 <= hi)
		dst[i+2] = boolToByte(v2 >= lo && v2 <= hi)
		dst[i+3] = boolToByte(v3 >= lo && v3 <= hi)
		dst[i+4] = boolToByte(v4 >= lo && v4 <= hi)
		dst[i+5] = boolToByte(v5 >= lo && v5 <= hi)
		dst[i+6] = boolToByte(v6 >= lo && v6 <= hi)
		dst[i+7] = boolToByte(v7 >= lo && v7 <= hi)
	}
	for ; i < n; i++ {
		dst[i] = boolToByte(values[i] >= lo && values[i] <= hi)
	}
}

func filterRangeGeneric[T Number](values []T, lo, hi T, dst []byte) {
	for i, v := range values {
		if v >= lo && v <= hi {
			dst[i] = 1
		} else {
			dst[i] = 0
		}
	}
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
