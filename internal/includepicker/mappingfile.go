package includepicker

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/iwyu-go/iwyu-go/internal/engineerr"
)

// mappingFileEntry is one element of an external `-Xiwyu --mapping_file=...`
// style mapping file (SPEC_FULL.md supplement #1): either a direct
// symbol -> include mapping, or an include -> [replacement includes] fan-out.
type mappingFileEntry struct {
	Symbol  string   `json:"symbol,omitempty"`
	Include string   `json:"include"`
	With    []string `json:"with,omitempty"`
}

// LoadMappingFile parses path (a small JSON array of mappingFileEntry) and
// adds every entry to the picker: symbol entries go straight into the symbol
// map, include entries go through AddMapping. Like AddMapping, it fails with
// PickerAlreadyFinalized once Finalize has run.
func (p *IncludePicker) LoadMappingFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading mapping file %s: %w", path, err)
	}

	var entries []mappingFileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing mapping file %s: %w", path, err)
	}

	for _, e := range entries {
		if e.Symbol != "" {
			p.mu.Lock()
			if p.frozen {
				p.mu.Unlock()
				return engineerr.PickerAlreadyFinalized
			}
			p.symbolMap[e.Symbol] = append(p.symbolMap[e.Symbol], e.Include)
			p.mu.Unlock()
			continue
		}
		for _, pub := range e.With {
			if err := p.AddMapping(e.Include, pub); err != nil {
				return err
			}
		}
	}
	return nil
}
