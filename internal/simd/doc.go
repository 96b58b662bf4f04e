// Package simd provides the batch kernels used by query evaluation.
//
// # Supported Platforms
//
//   - x86-64: AVX-512, AVX2
//   - ARM64: NEON, SVE2
//
// Runtime CPU feature detection (golang.org/x/sys/cpu) decides whether the
// accelerated kernels are used. Every accelerated kernel has a scalar twin with
// identical results; callers pick one through a Mode.
//
// The accelerated kernels are portable Go: blocked compares and unrolled
// loops that the compiler keeps in registers. They contain no assembly and
// no ISA-specific code. The detected ISA only gates whether they are selected,
// so Accelerated means "blocked kernels on a vector-capable CPU", not
// "vector instructions".
//
// # Operations
//
//   - Intersect: positions of common ids of two ascending slices
//     (blocked compare, galloping for skewed sizes)
//   - FilterRange: inclusive range mask over int64/float64 columns
//
// # Override
//
// Set QUARRY_SIMD=generic to force the scalar kernels process-wide.
package simd
