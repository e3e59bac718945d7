// Package metrics sends periodic gauges about an analysis server to statsd,
// grounded on the teacher's internal/server/statsd.go write-a-line-per-stat
// shape, retargeted from compilation/cache counters to analysis counters.
package metrics

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/iwyu-go/iwyu-go/internal/common"
)

// ServerStats is the subset of an analysis server's state statsd reports.
// Defined here rather than imported from internal/rpcserver so metrics has
// no dependency on the package that depends on it.
type ServerStats interface {
	StartTime() time.Time
	ActiveSessionsCount() int64
	CompletedSessionsCount() int64
	SourceCacheFilesCount() int64
	SourceCacheBytesOnDisk() int64
	ResultCacheFilesCount() int64
}

// Statsd holds cumulative counters incremented directly by the callers that
// observe them, and periodically dumps a gauge snapshot to statsd if
// configured.
type Statsd struct {
	requestsReceived    int64
	requestsFailed      int64
	bytesReceived       int64
	violationsFound     int64
	usesRecorded        int64
	filesAnalyzed       int64
	analysisDurationSum int64 // milliseconds, cumulative across requests

	statsdConnection net.Conn
	statsdBuffer     bytes.Buffer
}

func MakeStatsd(statsdHostPort string) (*Statsd, error) {
	if statsdHostPort == "" {
		return &Statsd{statsdConnection: nil}, nil
	}

	conn, err := net.Dial("udp", statsdHostPort)
	if err != nil {
		return nil, err
	}

	return &Statsd{statsdConnection: conn}, nil
}

// RecordRequest folds one finished analysis request's outcome into the
// cumulative counters fillBufferWithStats later reports.
func (cs *Statsd) RecordRequest(bytesIn int64, filesAnalyzed, usesRecorded, violationsFound int, durationMs int64, failed bool) {
	atomic.AddInt64(&cs.requestsReceived, 1)
	if failed {
		atomic.AddInt64(&cs.requestsFailed, 1)
	}
	atomic.AddInt64(&cs.bytesReceived, bytesIn)
	atomic.AddInt64(&cs.filesAnalyzed, int64(filesAnalyzed))
	atomic.AddInt64(&cs.usesRecorded, int64(usesRecorded))
	atomic.AddInt64(&cs.violationsFound, int64(violationsFound))
	atomic.AddInt64(&cs.analysisDurationSum, durationMs)
}

func (cs *Statsd) writeStat(statName string, value int64) {
	fmt.Fprintf(&cs.statsdBuffer, "iwyugo.%s:%d|g\n", statName, value)
}

func (cs *Statsd) fillBufferWithStats(stats ServerStats) {
	cs.writeStat("server.uptime", int64(time.Since(stats.StartTime()).Seconds()))
	cs.writeStat("server.goroutines", int64(runtime.NumGoroutine()))

	cs.writeStat("sessions.active", stats.ActiveSessionsCount())
	cs.writeStat("sessions.completed", stats.CompletedSessionsCount())

	cs.writeStat("requests.received", atomic.LoadInt64(&cs.requestsReceived))
	cs.writeStat("requests.failed", atomic.LoadInt64(&cs.requestsFailed))
	cs.writeStat("requests.bytes_received", atomic.LoadInt64(&cs.bytesReceived))

	cs.writeStat("analysis.files", atomic.LoadInt64(&cs.filesAnalyzed))
	cs.writeStat("analysis.uses_recorded", atomic.LoadInt64(&cs.usesRecorded))
	cs.writeStat("analysis.violations_found", atomic.LoadInt64(&cs.violationsFound))
	cs.writeStat("analysis.duration_ms", atomic.LoadInt64(&cs.analysisDurationSum))

	cs.writeStat("source_cache.files", stats.SourceCacheFilesCount())
	cs.writeStat("source_cache.disk_bytes", stats.SourceCacheBytesOnDisk())
	cs.writeStat("result_cache.files", stats.ResultCacheFilesCount())

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	cs.writeStat("memory.heap_alloc", int64(mem.HeapAlloc))
	cs.writeStat("memory.total_alloc", int64(mem.TotalAlloc))
	cs.writeStat("memory.heap_objects", int64(mem.HeapObjects))

	cs.writeStat("gc.cycles", int64(mem.NumGC))
	cs.writeStat("gc.pause_total", time.Duration(mem.PauseTotalNs).Milliseconds())
}

func (cs *Statsd) SendToStatsd(stats ServerStats, logger *common.LoggerWrapper) {
	if cs.statsdConnection == nil {
		return
	}

	cs.fillBufferWithStats(stats)

	_, err := io.Copy(cs.statsdConnection, &cs.statsdBuffer)
	if err != nil && logger != nil {
		logger.Error("writing to statsd", err)
	}
	cs.statsdBuffer.Reset()
}

func (cs *Statsd) Close() {
	if cs.statsdConnection != nil {
		_ = cs.statsdConnection.Close()
	}
	cs.statsdConnection = nil
}
