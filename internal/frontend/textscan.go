// Package frontend is the minimal text-scanning collaborator that stands in
// for the out-of-scope source-language front end's "preprocessor
// bookkeeping" role (spec.md §1, §6): discovering which #include and
// forward-declare lines are *already present* in a file, independent of
// whatever produces the fully type-resolved syntax tree the collector walks.
package frontend

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/iwyu-go/iwyu-go/internal/ledger"
)

// includeArg describes one matched #include directive.
type includeArg struct {
	insideStr     string
	isQuote       bool // #include "arg" vs #include <arg>
	isIncludeNext bool
	offset        int // byte offset of the directive's '#', for line numbering
}

func (a includeArg) String() string {
	hashInclude := "#include"
	if a.isIncludeNext {
		hashInclude = "#include_next"
	}
	if a.isQuote {
		return fmt.Sprintf("%s %q", hashInclude, a.insideStr)
	}
	return fmt.Sprintf("%s <%s>", hashInclude, a.insideStr)
}

func strChr(buffer []byte, chr byte, bufferSize int, offset int) int {
	idx := bytes.IndexByte(buffer[offset:bufferSize], chr)
	if idx == -1 {
		return -1
	}
	return idx + offset
}

// collectIncludeStatements finds all #include "arg" / #include <arg> in a
// file, in order of appearance; C and C++ style comments are respected,
// includes inside them aren't matched. Adapted byte-for-byte from the
// state machine nocc's own-includes parser used to avoid invoking the
// preprocessor, now scanning for presence rather than resolving a
// recursive dependency closure.
func collectIncludeStatements(buffer []byte) (includes []includeArg) {
	const (
		stateNone = iota
		stateAfterHash
		stateAfterInclude
		stateInsideQuoteBrackets
		stateInsideAngleBrackets
	)
	state := stateNone
	isInsideIncludeNext := false

	bufferSize := len(buffer)
	offset := 0
	hashOffset := 0
	nextHash := strChr(buffer, '#', bufferSize, 0)
	nextSlash := strChr(buffer, '/', bufferSize, 0)
	start := 0
Loop:
	for offset < bufferSize {
		switch state {
		case stateNone:
			if nextHash != -1 && nextHash < offset {
				nextHash = strChr(buffer, '#', bufferSize, offset)
			}
			if nextHash == -1 {
				break Loop
			}
			if nextSlash != -1 && nextSlash < offset {
				nextSlash = strChr(buffer, '/', bufferSize, offset)
			}
			if nextSlash != -1 && nextSlash < nextHash {
				offset = nextSlash
				if buffer[offset+1] == '/' {
					offset = strChr(buffer, '\n', bufferSize, offset)
					if offset == -1 {
						break Loop
					}
				} else if buffer[offset+1] == '*' {
					for ok := true; ok; ok = buffer[offset-1] != '*' {
						offset = strChr(buffer, '/', bufferSize, offset+1)
						if offset == -1 {
							break Loop
						}
					}
				}
			} else {
				offset = nextHash
				hashOffset = offset
				state = stateAfterHash
			}

		case stateAfterHash:
			switch buffer[offset] {
			case ' ', '\t':
			default:
				if bufferSize > offset+12 && string(buffer[offset:offset+12]) == "include_next" {
					state = stateAfterInclude
					offset += 11
					isInsideIncludeNext = true
				} else if bufferSize > offset+7 && string(buffer[offset:offset+7]) == "include" {
					state = stateAfterInclude
					offset += 6
					isInsideIncludeNext = false
				} else {
					state = stateNone
				}
			}

		case stateAfterInclude:
			switch buffer[offset] {
			case ' ', '\t':
			case '<':
				start = offset + 1
				state = stateInsideAngleBrackets
			case '"':
				start = offset + 1
				state = stateInsideQuoteBrackets
			default:
				state = stateNone // buggy code
			}

		case stateInsideAngleBrackets:
			switch buffer[offset] {
			case '\n':
				state = stateNone // buggy code
			case '>':
				includes = append(includes, includeArg{string(buffer[start:offset]), false, isInsideIncludeNext, hashOffset})
				state = stateNone
			}

		case stateInsideQuoteBrackets:
			switch buffer[offset] {
			case '\n':
				state = stateNone // buggy code
			case '"':
				includes = append(includes, includeArg{string(buffer[start:offset]), true, isInsideIncludeNext, hashOffset})
				state = stateNone
			}
		}

		offset++
	}

	return
}

// lineOfOffset returns the 1-based line number of byte offset in buffer.
func lineOfOffset(buffer []byte, offset int) int {
	return 1 + bytes.Count(buffer[:offset], []byte{'\n'})
}

// isForwardDeclLine matches the handful of forward-declare shapes a plain
// text scan can recognize without a real parser: "class Foo;" and
// "struct Foo;" as a whole trimmed line, wherever that line sits (inside a
// namespace block or not). A declaration sharing its line with other text,
// such as "namespace a { class Foo; }", is not matched. Anything cleverer is
// left to the front-end's fully type-resolved tree, which is the
// authoritative source for the Collector; this scan only needs to know
// what's already textually present.
func isForwardDeclLine(trimmed string) (symbol string, ok bool) {
	for _, kw := range []string{"class ", "struct "} {
		if strings.HasPrefix(trimmed, kw) && strings.HasSuffix(trimmed, ";") {
			name := strings.TrimSuffix(strings.TrimPrefix(trimmed, kw), ";")
			name = strings.TrimSpace(name)
			if name != "" && !strings.ContainsAny(name, " \t{}:") {
				return name, true
			}
		}
	}
	return "", false
}

// ScanPresentLines reads filePath and returns its #include lines and the
// simple forward-declare lines it can recognize, each marked IsPresent with
// a StartLine/EndLine. It never recurses into included files — unlike
// nocc's own-includes parser, which chased the whole dependency closure to
// avoid invoking `cxx -M`, this only needs one file's own text.
func ScanPresentLines(filePath string) ([]*ledger.IncludeOrForwardDeclareLine, error) {
	buffer, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var lines []*ledger.IncludeOrForwardDeclareLine
	for _, inc := range collectIncludeStatements(buffer) {
		lineNo := lineOfOffset(buffer, inc.offset)
		q := ledger.QuotedInclude(inc.String()[strings.IndexAny(inc.String(), "\"<"):])
		lines = append(lines, &ledger.IncludeOrForwardDeclareLine{
			Kind:        ledger.LineInclude,
			Quoted:      q,
			PrintedForm: inc.String(),
			IsPresent:   true,
			StartLine:   lineNo,
			EndLine:     lineNo,
		})
	}

	for i, raw := range strings.Split(string(buffer), "\n") {
		trimmed := strings.TrimSpace(raw)
		if symbol, ok := isForwardDeclLine(trimmed); ok {
			lines = append(lines, &ledger.IncludeOrForwardDeclareLine{
				Kind:        ledger.LineForwardDecl,
				Decl:        ledger.MakeDeclHandle(symbol),
				PrintedForm: trimmed,
				IsPresent:   true,
				StartLine:   i + 1,
				EndLine:     i + 1,
			})
		}
	}

	return lines, nil
}
