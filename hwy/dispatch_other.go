//go:build !amd64

package hwy

// Non-amd64 architectures (including arm64) run the NoSIMD reference path.
// The engine's dispatch tiers (spec-defined: NoSIMD, AVX2, AVX512F,
// AVX512-VNNI, AMX-INT8/BF16) are all x86-specific; there is no ARM tier to
// select into, so every primitive's scalar reference runs directly.
func init() {
	currentLevel = DispatchNoSIMD
	currentWidth = 16 // Use 16-byte vectors even in scalar mode for consistency.
	currentName = "nosimd"
}

// HasF16C returns false on non-x86 platforms (F16C is an x86-specific feature).
func HasF16C() bool { return false }

// HasAVX512FP16 returns false on non-x86 platforms (AVX-512 is x86-specific).
func HasAVX512FP16() bool { return false }

// HasAVX512BF16 returns false on non-x86 platforms (AVX-512 is x86-specific).
func HasAVX512BF16() bool { return false }

// HasARMFP16 returns false: this build carries no ARM-specific feature probe.
func HasARMFP16() bool { return false }

// HasARMBF16 returns false: this build carries no ARM-specific feature probe.
func HasARMBF16() bool { return false }

// HasSME reports ARM Scalable Matrix Extension support. Always false: this
// engine has no SME kernels (see DESIGN.md).
func HasSME() bool { return false }
