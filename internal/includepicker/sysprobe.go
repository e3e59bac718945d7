package includepicker

import (
	"os"
	"strings"
	"sync"
)

// SysProbe lazily answers "is this an OS-provided header" for paths that
// aren't covered by the static C/C++ maps (e.g. a vendor header dropped
// straight into /usr/include by a package manager). Retargeted from the
// teacher's SystemHeadersCache, which answered "can the server skip
// uploading this file" by checking a known system directory plus a content
// hash; here there's no remote peer to compare against, so a single
// existence probe under a known system root is enough.
type SysProbe struct {
	mu     sync.RWMutex
	probed map[string]bool
}

func NewSysProbe() *SysProbe {
	return &SysProbe{probed: make(map[string]bool, 512)}
}

var systemRoots = []string{"/usr/", "/Library/", "/opt/"}

// IsKnownSystemPath reports whether path sits under a known OS header root
// and actually exists on disk.
func (p *SysProbe) IsKnownSystemPath(path string) bool {
	underSystemRoot := false
	for _, root := range systemRoots {
		if strings.HasPrefix(path, root) {
			underSystemRoot = true
			break
		}
	}
	if !underSystemRoot {
		return false
	}

	p.mu.RLock()
	known, seen := p.probed[path]
	p.mu.RUnlock()
	if seen {
		return known
	}

	_, err := os.Stat(path)
	exists := err == nil

	p.mu.Lock()
	p.probed[path] = exists
	p.mu.Unlock()
	return exists
}

func (p *SysProbe) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.probed)
}
