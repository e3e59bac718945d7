package metrics

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"
)

type fakeServerStats struct {
	start time.Time
}

func (f fakeServerStats) StartTime() time.Time          { return f.start }
func (f fakeServerStats) ActiveSessionsCount() int64    { return 3 }
func (f fakeServerStats) CompletedSessionsCount() int64 { return 7 }
func (f fakeServerStats) SourceCacheFilesCount() int64  { return 42 }
func (f fakeServerStats) SourceCacheBytesOnDisk() int64 { return 1 << 20 }
func (f fakeServerStats) ResultCacheFilesCount() int64  { return 5 }

func TestMakeStatsdWithoutHostPortIsNoop(t *testing.T) {
	cs, err := MakeStatsd("")
	if err != nil {
		t.Fatalf("MakeStatsd: %v", err)
	}
	cs.RecordRequest(100, 2, 3, 1, 50, false)
	cs.SendToStatsd(fakeServerStats{start: time.Now()}, nil)
	cs.Close()
}

func TestSendToStatsdWritesGaugeLines(t *testing.T) {
	listener, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket: %v", err)
	}
	defer listener.Close()

	cs, err := MakeStatsd(listener.LocalAddr().String())
	if err != nil {
		t.Fatalf("MakeStatsd: %v", err)
	}
	defer cs.Close()

	cs.RecordRequest(128, 4, 9, 2, 75, false)
	cs.SendToStatsd(fakeServerStats{start: time.Now().Add(-time.Minute)}, nil)

	buf := make([]byte, 4096)
	listener.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := listener.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	var foundFiles, foundViolations bool
	scanner := bufio.NewScanner(strings.NewReader(string(buf[:n])))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "iwyugo.analysis.files:4|g") {
			foundFiles = true
		}
		if strings.HasPrefix(line, "iwyugo.analysis.violations_found:2|g") {
			foundViolations = true
		}
	}
	if !foundFiles || !foundViolations {
		t.Errorf("missing expected gauge lines in %q", string(buf[:n]))
	}
}
