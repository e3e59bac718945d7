package rpcserver

import (
	"fmt"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/iwyu-go/iwyu-go/internal/diffemit"
	"github.com/iwyu-go/iwyu-go/internal/driverrun"
	"github.com/iwyu-go/iwyu-go/internal/frontend"
	"github.com/iwyu-go/iwyu-go/internal/ledger"
)

// fixtureSuffix names the one uploaded file per session that carries the
// translation unit's serialized AST, standing in for what a real C/C++
// front end would hand the engine directly (spec.md §1, §6 put that front
// end out of scope; see internal/frontend/fixture.go).
const fixtureSuffix = ".iwyu-ast.json"

// AnalysisLauncher runs the engine for a session on a goroutine, managing a
// waiting queue so a spike of connecting clients doesn't exceed the
// configured parallelism, grounded on internal/server/cxx-launcher.go's
// throttle-then-launch-then-release shape (there, it execs a C++ compiler;
// here, it drives driverrun.Engine in-process).
type AnalysisLauncher struct {
	throttle chan struct{}

	nSessionsReadyButWaiting int64
	nSessionsNowAnalyzing    int64

	totalCalls      int64
	totalDurationMs int64
	more1secCount   int64
	more5secCount   int64
	failedCount     int64
}

func MakeAnalysisLauncher(maxParallelAnalyses int64) (*AnalysisLauncher, error) {
	if maxParallelAnalyses <= 0 {
		return nil, fmt.Errorf("invalid maxParallelAnalyses %d", maxParallelAnalyses)
	}

	return &AnalysisLauncher{
		throttle: make(chan struct{}, maxParallelAnalyses),
	}, nil
}

// LaunchAnalysisWhenPossible blocks until a slot is free, analyzes the
// session's translation unit, and pushes it to its client's ready channel.
func (l *AnalysisLauncher) LaunchAnalysisWhenPossible(s *AnalysisServer, session *Session) {
	atomic.AddInt64(&l.nSessionsReadyButWaiting, 1)
	l.throttle <- struct{}{}

	atomic.AddInt64(&l.nSessionsReadyButWaiting, -1)
	curParallelCount := atomic.AddInt64(&l.nSessionsNowAnalyzing, 1)

	logServer.Info(1, "analyze #", curParallelCount, "sessionID", session.sessionID, "clientID", session.client.clientID, session.cppInFile)
	l.runEngineForSession(s, session)

	atomic.AddInt64(&l.nSessionsNowAnalyzing, -1)
	atomic.AddInt64(&l.totalCalls, 1)
	atomic.AddInt64(&l.totalDurationMs, int64(session.analysisDuration))

	switch {
	case session.analysisErr != "":
		atomic.AddInt64(&l.failedCount, 1)
	case session.analysisDuration > 5000:
		atomic.AddInt64(&l.more5secCount, 1)
	case session.analysisDuration > 1000:
		atomic.AddInt64(&l.more1secCount, 1)
	}

	<-l.throttle
	session.PushToClientReadyChannel()
}

func (l *AnalysisLauncher) GetNowAnalyzingSessionsCount() int64 {
	return atomic.LoadInt64(&l.nSessionsNowAnalyzing)
}

func (l *AnalysisLauncher) GetWaitingInQueueSessionsCount() int64 {
	return atomic.LoadInt64(&l.nSessionsReadyButWaiting)
}

func (l *AnalysisLauncher) GetTotalAnalysisCallsCount() int64 {
	return atomic.LoadInt64(&l.totalCalls)
}

func (l *AnalysisLauncher) GetTotalAnalysisDurationMilliseconds() int64 {
	return atomic.LoadInt64(&l.totalDurationMs)
}

func (l *AnalysisLauncher) GetMore1secCount() int64 {
	return atomic.LoadInt64(&l.more1secCount)
}

func (l *AnalysisLauncher) GetMore5secCount() int64 {
	return atomic.LoadInt64(&l.more5secCount)
}

func (l *AnalysisLauncher) GetFailedCount() int64 {
	return atomic.LoadInt64(&l.failedCount)
}

// runEngineForSession loads the session's uploaded fixture AST, scans every
// other uploaded file for its present #include/forward-declare lines, runs
// the engine, and renders the diff into session.diffOutput.
func (l *AnalysisLauncher) runEngineForSession(s *AnalysisServer, session *Session) {
	start := time.Now()
	defer func() {
		session.analysisDuration = int32(time.Since(start).Milliseconds())
	}()

	var fixturePath string
	presentLines := make(map[ledger.FileHandle][]*ledger.IncludeOrForwardDeclareLine)
	for _, file := range session.files {
		if strings.HasSuffix(file.serverFileName, fixtureSuffix) {
			fixturePath = file.serverFileName
			continue
		}
		lines, err := s.ScanCache.ScanPresentLinesCached(file.serverFileName)
		if err != nil {
			session.analysisErr = fmt.Sprintf("scanning %s: %v", file.serverFileName, err)
			return
		}
		presentLines[ledger.MakeFileHandle(file.clientFileName)] = lines
	}
	if fixturePath == "" {
		session.analysisErr = fmt.Sprintf("no %s file uploaded for sessionID %d", fixtureSuffix, session.sessionID)
		return
	}

	fixture, err := frontend.LoadFixture(fixturePath)
	if err != nil {
		session.analysisErr = fmt.Sprintf("loading fixture: %v", err)
		return
	}

	engine := driverrun.NewEngine(s.Picker, s.SearchPaths, fixture.TypeInfo)
	summary, ledgers := engine.Run(fixture.Resolver, fixture.Roots, presentLines)
	session.violationsFound = int32(summary.ViolationsFound)

	emitter := diffemit.New(1)
	var out strings.Builder
	for _, fileLedger := range ledgers {
		if session.outputFormat == "make" {
			out.Write(diffemit.DepFileFromLedger(fileLedger).WriteToBytes())
			continue
		}
		associated := make([]*ledger.PerFileLedger, 0, len(fileLedger.Associated))
		for other := range fileLedger.Associated {
			if a, ok := ledgers[other]; ok {
				associated = append(associated, a)
			}
		}
		out.WriteString(emitter.FormatFileDiff(fileLedger, associated))
	}
	session.diffOutput = []byte(out.String())

	if !session.resultCacheKey.IsEmpty() && session.analysisErr == "" {
		_ = s.ResultCache.SaveBytesToCache(session.diffOutput, path.Base(session.cppInFile)+".diff", session.resultCacheKey)
	}
}
