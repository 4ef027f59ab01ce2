// control/platform.go
// Author: momentics <momentics@gmail.com>
//
// Platform debug probes: CPU count and the instruction set features
// reported by golang.org/x/sys/cpu.

package control

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// RegisterPlatformProbes sets platform debug probes.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.os", func() any {
		return runtime.GOOS + "/" + runtime.GOARCH
	})
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.cpu_features", func() any {
		return cpuFeatures()
	})
}

func cpuFeatures() map[string]bool {
	switch runtime.GOARCH {
	case "amd64", "386":
		return map[string]bool{
			"sse2":   cpu.X86.HasSSE2,
			"sse42":  cpu.X86.HasSSE42,
			"avx2":   cpu.X86.HasAVX2,
			"popcnt": cpu.X86.HasPOPCNT,
		}
	case "arm64":
		return map[string]bool{
			"asimd": cpu.ARM64.HasASIMD,
			"crc32": cpu.ARM64.HasCRC32,
			"aes":   cpu.ARM64.HasAES,
		}
	default:
		return map[string]bool{}
	}
}
