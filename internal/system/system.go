// Package system reports on the host the renderer runs on.
package system

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Snapshot is a point-in-time view of the host
type Snapshot struct {
	Hostname     string  `json:"hostname"`
	Platform     string  `json:"platform"`
	LogicalCPUs  int     `json:"logical_cpus"`
	PhysicalCPUs int     `json:"physical_cpus"`
	MemTotal     uint64  `json:"mem_total"`
	MemUsedPct   float64 `json:"mem_used_pct"`
}

// Inspect collects a Snapshot. Fields that cannot be read are left zero;
// only a failure to count CPUs at all is an error.
func Inspect() (Snapshot, error) {
	var s Snapshot

	logical, err := cpu.Counts(true)
	if err != nil {
		return s, fmt.Errorf("count cpus: %w", err)
	}
	s.LogicalCPUs = logical
	if physical, err := cpu.Counts(false); err == nil {
		s.PhysicalCPUs = physical
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		s.MemTotal = vm.Total
		s.MemUsedPct = vm.UsedPercent
	}
	if info, err := host.Info(); err == nil {
		s.Hostname = info.Hostname
		s.Platform = fmt.Sprintf("%s %s (%s)", info.Platform, info.PlatformVersion, info.KernelArch)
	}
	return s, nil
}

// DefaultWorkers returns the worker count to use when none is configured
func DefaultWorkers() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// String formats the snapshot for the performance report
func (s Snapshot) String() string {
	return fmt.Sprintf("%s | %s | CPU %d/%d | RAM %.1f GiB (%.0f%% used)",
		s.Hostname, s.Platform, s.PhysicalCPUs, s.LogicalCPUs,
		float64(s.MemTotal)/(1<<30), s.MemUsedPct)
}
