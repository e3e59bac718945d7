package frontend

import (
	"sync"

	"github.com/iwyu-go/iwyu-go/internal/ledger"
)

type cachedScan struct {
	stamp fileStamp
	lines []*ledger.IncludeOrForwardDeclareLine
}

// ScanCache keeps the present-lines scan of each file across watch-mode
// re-runs, invalidated by size/mtime and, on a mismatch, by content hash.
// Grounded on the teacher's includes-cache map+RWMutex shape, repurposed
// from "resolved #include -> dependency metadata" to "file path -> its own
// scanned present lines".
type ScanCache struct {
	mu      sync.RWMutex
	entries map[string]cachedScan
}

func NewScanCache() *ScanCache {
	return &ScanCache{entries: make(map[string]cachedScan)}
}

// ScanPresentLinesCached is ScanPresentLines with a size/mtime/sha256-keyed
// cache in front of it, so a watch-mode re-run only re-scans files whose
// stat actually changed.
func (c *ScanCache) ScanPresentLinesCached(path string) ([]*ledger.IncludeOrForwardDeclareLine, error) {
	stamp, err := statFile(path)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	cached, ok := c.entries[path]
	c.mu.RUnlock()
	if ok && cached.stamp.sameStatAs(stamp) {
		return cached.lines, nil
	}

	lines, err := ScanPresentLines(path)
	if err != nil {
		return nil, err
	}
	stamp, err = hashFile(path, stamp)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[path] = cachedScan{stamp: stamp, lines: lines}
	c.mu.Unlock()
	return lines, nil
}

func (c *ScanCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *ScanCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cachedScan)
	c.mu.Unlock()
}
