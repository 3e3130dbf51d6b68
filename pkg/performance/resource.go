// Package performance reports process resource usage and throughput for a
// tripstat run.
package performance

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// ResourceMonitor monitors process and system resources from the moment it
// is created.
type ResourceMonitor struct {
	process      *process.Process
	startCPUTime float64
	startTime    time.Time
	mu           sync.RWMutex
}

// NewResourceMonitor creates a resource monitor for the current process.
func NewResourceMonitor() *ResourceMonitor {
	rm := &ResourceMonitor{startTime: time.Now()}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return rm
	}
	rm.process = proc
	if cpuTime, err := proc.Times(); err == nil {
		rm.startCPUTime = cpuTime.Total()
	}
	return rm
}

// ResourceUsage contains resource usage information
type ResourceUsage struct {
	Elapsed               time.Duration
	CPUPercent            float64
	SystemCPUPercent      float64
	MemoryRSS             uint64
	MemoryVMS             uint64
	HeapAlloc             uint64
	TotalAlloc            uint64
	GCCount               uint32
	SystemMemoryPercent   float64
	SystemMemoryAvailable uint64
	GoroutineCount        int
	ThreadCount           int32
}

// Usage returns resource usage since the monitor was created. Fields the
// platform cannot report are left zero.
func (rm *ResourceMonitor) Usage() *ResourceUsage {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	usage := &ResourceUsage{
		Elapsed:        time.Since(rm.startTime),
		GoroutineCount: runtime.NumGoroutine(),
	}

	if rm.process != nil {
		if cpuTime, err := rm.process.Times(); err == nil && usage.Elapsed > 0 {
			usage.CPUPercent = ((cpuTime.Total() - rm.startCPUTime) / usage.Elapsed.Seconds()) * 100
		}
		if memInfo, err := rm.process.MemoryInfo(); err == nil {
			usage.MemoryRSS = memInfo.RSS
			usage.MemoryVMS = memInfo.VMS
		}
		usage.ThreadCount, _ = rm.process.NumThreads()
	}

	if percent, err := cpu.Percent(0, false); err == nil && len(percent) > 0 {
		usage.SystemCPUPercent = percent[0]
	}
	if vmStat, err := mem.VirtualMemory(); err == nil {
		usage.SystemMemoryPercent = vmStat.UsedPercent
		usage.SystemMemoryAvailable = vmStat.Available
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	usage.HeapAlloc = memStats.HeapAlloc
	usage.TotalAlloc = memStats.TotalAlloc
	usage.GCCount = memStats.NumGC

	return usage
}

// Throughput converts a line and byte count over the usage window into
// per-second rates.
func (u *ResourceUsage) Throughput(lines, bytes int64) (linesPerSec, mbPerSec float64) {
	secs := u.Elapsed.Seconds()
	if secs <= 0 {
		return 0, 0
	}
	return float64(lines) / secs, float64(bytes) / secs / (1024 * 1024)
}

// Fields renders the usage as zap fields.
func (u *ResourceUsage) Fields() []zap.Field {
	return []zap.Field{
		zap.Duration("elapsed", u.Elapsed),
		zap.Float64("cpu_percent", u.CPUPercent),
		zap.Float64("system_cpu_percent", u.SystemCPUPercent),
		zap.Uint64("rss_mb", u.MemoryRSS/1024/1024),
		zap.Uint64("heap_alloc_mb", u.HeapAlloc/1024/1024),
		zap.Uint64("total_alloc_mb", u.TotalAlloc/1024/1024),
		zap.Uint32("gc_count", u.GCCount),
		zap.Float64("system_memory_percent", u.SystemMemoryPercent),
		zap.Int("goroutines", u.GoroutineCount),
		zap.Int32("threads", u.ThreadCount),
	}
}
