package frontend

import (
	"os"

	"github.com/iwyu-go/iwyu-go/internal/common"
)

// fileStamp is a cheap freshness marker for one scanned file: size and
// mtime are checked on every watch-mode re-run, and the SHA256 (the
// expensive part, delegated to common.GetFileSHA256) is only recomputed
// when those disagree with what's cached. Grounded on the size/sha256
// pairing the teacher used to decide whether a dependency needed
// re-uploading, retargeted here to decide whether a file needs rescanning.
type fileStamp struct {
	size    int64
	modTime int64
	sha256  common.SHA256
}

func statFile(path string) (fileStamp, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, err
	}
	return fileStamp{size: stat.Size(), modTime: stat.ModTime().UnixNano()}, nil
}

func (s fileStamp) sameStatAs(other fileStamp) bool {
	return s.size == other.size && s.modTime == other.modTime
}

func hashFile(path string, stamp fileStamp) (fileStamp, error) {
	sum, err := common.GetFileSHA256(path)
	if err != nil {
		return fileStamp{}, err
	}
	stamp.sha256 = sum
	return stamp, nil
}
