package arenatree

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordGrow is called after the slot pool grows.
	RecordGrow(oldCap, newCap int)

	// RecordAlloc is called for every node allocated.
	RecordAlloc()

	// RecordFree is called with the number of nodes freed by one operation.
	RecordFree(n int)

	// RecordCopy is called after a subtree copy with the number of nodes copied.
	RecordCopy(nodes int, duration time.Duration)

	// RecordSnapshot is called after a snapshot write.
	RecordSnapshot(bytes int64, duration time.Duration, err error)

	// RecordRestore is called after a snapshot read.
	RecordRestore(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordGrow(int, int)                        {}
func (NoopMetricsCollector) RecordAlloc()                               {}
func (NoopMetricsCollector) RecordFree(int)                             {}
func (NoopMetricsCollector) RecordCopy(int, time.Duration)              {}
func (NoopMetricsCollector) RecordSnapshot(int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordRestore(time.Duration, error)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	GrowCount          atomic.Int64
	Capacity           atomic.Int64
	AllocCount         atomic.Int64
	FreeCount          atomic.Int64
	CopyCount          atomic.Int64
	CopiedNodes        atomic.Int64
	CopyTotalNanos     atomic.Int64
	SnapshotCount      atomic.Int64
	SnapshotErrors     atomic.Int64
	SnapshotBytes      atomic.Int64
	SnapshotTotalNanos atomic.Int64
	RestoreCount       atomic.Int64
	RestoreErrors      atomic.Int64
}

// RecordGrow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGrow(_, newCap int) {
	b.GrowCount.Add(1)
	b.Capacity.Store(int64(newCap))
}

// RecordAlloc implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAlloc() {
	b.AllocCount.Add(1)
}

// RecordFree implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFree(n int) {
	b.FreeCount.Add(int64(n))
}

// RecordCopy implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCopy(nodes int, duration time.Duration) {
	b.CopyCount.Add(1)
	b.CopiedNodes.Add(int64(nodes))
	b.CopyTotalNanos.Add(duration.Nanoseconds())
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(bytes int64, duration time.Duration, err error) {
	b.SnapshotCount.Add(1)
	b.SnapshotTotalNanos.Add(duration.Nanoseconds())

	if err != nil {
		b.SnapshotErrors.Add(1)
		return
	}

	b.SnapshotBytes.Add(bytes)
}

// RecordRestore implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRestore(_ time.Duration, err error) {
	b.RestoreCount.Add(1)
	if err != nil {
		b.RestoreErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		GrowCount:        b.GrowCount.Load(),
		Capacity:         b.Capacity.Load(),
		LiveNodes:        b.AllocCount.Load() - b.FreeCount.Load(),
		AllocCount:       b.AllocCount.Load(),
		FreeCount:        b.FreeCount.Load(),
		CopyCount:        b.CopyCount.Load(),
		CopiedNodes:      b.CopiedNodes.Load(),
		CopyAvgNanos:     avg(b.CopyTotalNanos.Load(), b.CopyCount.Load()),
		SnapshotCount:    b.SnapshotCount.Load(),
		SnapshotErrors:   b.SnapshotErrors.Load(),
		SnapshotBytes:    b.SnapshotBytes.Load(),
		SnapshotAvgNanos: avg(b.SnapshotTotalNanos.Load(), b.SnapshotCount.Load()),
		RestoreCount:     b.RestoreCount.Load(),
		RestoreErrors:    b.RestoreErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}

	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	GrowCount        int64
	Capacity         int64
	LiveNodes        int64
	AllocCount       int64
	FreeCount        int64
	CopyCount        int64
	CopiedNodes      int64
	CopyAvgNanos     int64
	SnapshotCount    int64
	SnapshotErrors   int64
	SnapshotBytes    int64
	SnapshotAvgNanos int64
	RestoreCount     int64
	RestoreErrors    int64
}
