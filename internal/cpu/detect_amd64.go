//go:build amd64

package cpu

import "golang.org/x/sys/cpu"

// probe reads the x86 vector extensions. x/sys/cpu only reports AVX2 when
// the OS saves the YMM registers.
func probe() Features {
	return Features{
		HasSSE2: cpu.X86.HasSSE2,
		HasAVX2: cpu.X86.HasAVX2,
	}
}
