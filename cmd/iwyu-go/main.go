package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/iwyu-go/iwyu-go/internal/common"
	"github.com/iwyu-go/iwyu-go/internal/config"
	"github.com/iwyu-go/iwyu-go/internal/diffemit"
	"github.com/iwyu-go/iwyu-go/internal/driverrun"
	"github.com/iwyu-go/iwyu-go/internal/frontend"
	"github.com/iwyu-go/iwyu-go/internal/includepicker"
	"github.com/iwyu-go/iwyu-go/internal/ledger"
	"github.com/iwyu-go/iwyu-go/internal/pathutil"
)

func failed(message string, err error) {
	_, _ = fmt.Fprintln(os.Stderr, fmt.Sprint("iwyu-go: ", message, ": ", err))
	os.Exit(1)
}

func parseSearchPaths(isystem, iquote, iuser string, extra []pathutil.HeaderSearchPath) *pathutil.SearchPathIndex {
	paths := append([]pathutil.HeaderSearchPath(nil), extra...)
	addAll := func(csv string, kind pathutil.SearchPathKind) {
		for _, p := range strings.Split(csv, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, pathutil.HeaderSearchPath{Path: p, Kind: kind})
			}
		}
	}
	addAll(isystem, pathutil.SystemPath)
	addAll(iquote, pathutil.UserPath)
	addAll(iuser, pathutil.UserPath)
	return pathutil.NewSearchPathIndex(paths)
}

func parseCSV(csv string) []string {
	var out []string
	for _, p := range strings.Split(csv, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// runOnce (re-)loads the fixture, scans every listed file for its present
// #include/forward-declare lines, runs a fresh engine over it, and writes
// the rendered diff to out. A fresh engine is built every call so -watch
// mode picks up edits to the fixture's own declaration table, not only to
// the header files it scans.
func runOnce(picker *includepicker.IncludePicker, searchPaths *pathutil.SearchPathIndex, scanCache *frontend.ScanCache, fixturePath string, otherFiles []string, outputFormat string, logVerbosity int64, out *os.File) error {
	fixture, err := frontend.LoadFixture(fixturePath)
	if err != nil {
		return fmt.Errorf("loading fixture %s: %w", fixturePath, err)
	}
	engine := driverrun.NewEngine(picker, searchPaths, fixture.TypeInfo)

	presentLines := make(map[ledger.FileHandle][]*ledger.IncludeOrForwardDeclareLine, len(otherFiles))
	for _, filePath := range otherFiles {
		lines, err := scanCache.ScanPresentLinesCached(filePath)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", filePath, err)
		}
		presentLines[ledger.MakeFileHandle(filePath)] = lines
	}

	start := time.Now()
	summary, ledgers := engine.Run(fixture.Resolver, fixture.Roots, presentLines)
	summary.AddTiming("run")

	emitter := diffemit.New(1)
	for _, fileLedger := range orderedFileHandles(ledgers) {
		l := ledgers[fileLedger]
		if outputFormat == "make" {
			_, _ = out.Write(diffemit.DepFileFromLedger(l).WriteToBytes())
			continue
		}
		associated := make([]*ledger.PerFileLedger, 0, len(l.Associated))
		for other := range l.Associated {
			if a, ok := ledgers[other]; ok {
				associated = append(associated, a)
			}
		}
		_, _ = fmt.Fprint(out, emitter.FormatFileDiff(l, associated))
	}

	if logVerbosity >= 0 {
		_, _ = fmt.Fprintln(os.Stderr, summary.ToLogString(), "elapsed", time.Since(start))
	}
	return nil
}

func orderedFileHandles(ledgers map[ledger.FileHandle]*ledger.PerFileLedger) []ledger.FileHandle {
	handles := make([]ledger.FileHandle, 0, len(ledgers))
	for h := range ledgers {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i].Path() < handles[j].Path() })
	return handles
}

func watchAndRerun(paths []string, run func()) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		failed("can't start file watcher", err)
	}
	defer watcher.Close()

	for _, p := range paths {
		if err := watcher.Add(p); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, "iwyu-go: not watching", p, ":", err)
		}
	}

	run()
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				run()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			_, _ = fmt.Fprintln(os.Stderr, "iwyu-go: watcher error:", err)
		}
	}
}

func main() {
	fixturePath := common.CmdEnvString("Path to a translation unit's serialized AST fixture (*.iwyu-ast.json).", "",
		"fixture", "")
	filesCSV := common.CmdEnvString("Comma-separated paths of every header/source file reachable from the fixture.", "",
		"files", "")
	outputFormat := common.CmdEnvString("Output format: make for a Makefile dependency line; any other value (default add) prints the include diff.", "add",
		"format", "")
	isystemDirs := common.CmdEnvString("Comma-separated -isystem search dirs.", "",
		"isystem", "")
	iquoteDirs := common.CmdEnvString("Comma-separated -iquote search dirs.", "",
		"iquote", "")
	iDirs := common.CmdEnvString("Comma-separated -I search dirs.", "",
		"I", "")
	watch := common.CmdEnvBool("Re-run whenever the fixture or any listed file changes.", false,
		"watch", "")
	logVerbosity := common.CmdEnvInt("Verbosity for the per-run summary printed to stderr (-1 off).", 0,
		"log-verbosity", "")
	configPath := common.CmdEnvString("Path to a project config file.", ".iwyugo.toml",
		"config", "")

	common.ParseCmdFlagsCombiningWithEnv()

	if *fixturePath == "" {
		failed("missing required flag", fmt.Errorf("-fixture"))
	}

	projectConfig, err := config.Load(*configPath)
	if err != nil {
		failed("can't load config", err)
	}

	otherFiles := parseCSV(*filesCSV)
	if len(projectConfig.IgnoreGlobs) > 0 {
		kept := otherFiles[:0]
		for _, f := range otherFiles {
			if !projectConfig.IsIgnored(f) {
				kept = append(kept, f)
			}
		}
		otherFiles = kept
	}

	format := *outputFormat
	if format == "add" && projectConfig.OutputFormat != "" {
		format = projectConfig.OutputFormat
	}

	searchPaths := parseSearchPaths(*isystemDirs, *iquoteDirs, *iDirs, projectConfig.SearchPaths)

	picker := includepicker.NewIncludePicker()
	for _, mappingFile := range projectConfig.MappingFiles {
		if err := picker.LoadMappingFile(mappingFile); err != nil {
			failed("can't load mapping file "+mappingFile, err)
		}
	}
	if err := picker.Finalize(); err != nil {
		failed("can't finalize include picker", err)
	}

	scanCache := frontend.NewScanCache()

	run := func() {
		if err := runOnce(picker, searchPaths, scanCache, *fixturePath, otherFiles, format, *logVerbosity, os.Stdout); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, "iwyu-go:", err)
		}
	}

	if *watch {
		watchAndRerun(append([]string{*fixturePath}, otherFiles...), run)
		return
	}
	run()
}
