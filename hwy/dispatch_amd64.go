//go:build amd64

package hwy

import "golang.org/x/sys/cpu"

// init probes golang.org/x/sys/cpu once at process start (detectCPUFeatures)
// and records the highest dispatch tier the host supports. VNNI and AMX are
// detected and reported by CurrentLevel/CurrentName for diagnostics, but
// numeric primitives in this repo execute them via the AVX512F Go path
// (see DESIGN.md: no native Go AMX/VNNI codegen).
func init() {
	if NoSimdEnv() {
		setScalarMode()
		return
	}
	detectCPUFeatures()
}

func detectCPUFeatures() {
	switch {
	case cpu.X86.HasAMXBF16:
		currentLevel = DispatchAMXBF16
		currentWidth = 64
		currentName = "amx-bf16"
	case cpu.X86.HasAMXInt8:
		currentLevel = DispatchAMXInt8
		currentWidth = 64
		currentName = "amx-int8"
	case cpu.X86.HasAVX512VNNI:
		currentLevel = DispatchAVX512VNNI
		currentWidth = 64
		currentName = "avx512-vnni"
	case cpu.X86.HasAVX512F:
		currentLevel = DispatchAVX512
		currentWidth = 64
		currentName = "avx512f"
	case cpu.X86.HasAVX2:
		currentLevel = DispatchAVX2
		currentWidth = 32
		currentName = "avx2"
	default:
		setScalarMode()
	}
}

func setScalarMode() {
	currentLevel = DispatchNoSIMD
	currentWidth = 16 // Use 16-byte vectors even in scalar mode for consistency.
	currentName = "nosimd"
}

// HasF16C reports whether the host can natively convert float16<->float32.
func HasF16C() bool { return cpu.X86.HasF16C }

// HasAVX512FP16 reports AVX-512 FP16 instruction support.
func HasAVX512FP16() bool { return cpu.X86.HasAVX512FP16 }

// HasAVX512BF16 reports AVX-512 BF16 instruction support.
func HasAVX512BF16() bool { return cpu.X86.HasAVX512BF16 }

// HasSME reports ARM Scalable Matrix Extension support; always false on amd64.
func HasSME() bool { return false }

// HasARMFP16 reports ARM FP16 support; always false on amd64.
func HasARMFP16() bool { return false }

// HasARMBF16 reports ARM BF16 support; always false on amd64.
func HasARMBF16() bool { return false }
