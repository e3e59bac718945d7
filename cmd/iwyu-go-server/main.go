package main

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/iwyu-go/iwyu-go/internal/common"
	"github.com/iwyu-go/iwyu-go/internal/config"
	"github.com/iwyu-go/iwyu-go/internal/frontend"
	"github.com/iwyu-go/iwyu-go/internal/includepicker"
	"github.com/iwyu-go/iwyu-go/internal/metrics"
	"github.com/iwyu-go/iwyu-go/internal/pathutil"
	"github.com/iwyu-go/iwyu-go/internal/rpcserver"
	"github.com/iwyu-go/iwyu-go/rpc/iwyugo"
	"google.golang.org/grpc"
)

func failedStart(message string, err error) {
	_, _ = fmt.Fprintln(os.Stderr, fmt.Sprint("failed to start iwyu-go-server: ", message, ": ", err))
	os.Exit(1)
}

// cleanupWorkingDir ensures workingDir exists and is empty on launch, moving
// any previous run's dir aside. As a consequence, both file caches are lost
// on restart.
func cleanupWorkingDir(workingDir string) error {
	oldWorkingDir := workingDir + ".old"

	if err := os.RemoveAll(oldWorkingDir); err != nil {
		failedStart("can't remove old working dir", err)
	}
	if _, err := os.Stat(workingDir); err == nil {
		if err := os.Rename(workingDir, oldWorkingDir); err != nil {
			failedStart("can't rename working dir to .old", err)
		}
	}
	return os.MkdirAll(workingDir, os.ModePerm)
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

func main() {
	var err error

	showVersionAndExit := common.CmdEnvBool("Show version and exit", false,
		"version", "")
	bindHost := common.CmdEnvString("Binding address, default 0.0.0.0.", "0.0.0.0",
		"host", "")
	listenPort := common.CmdEnvInt("Listening port, default 43210.", 43210,
		"port", "")
	workingDir := common.CmdEnvString("Directory for saving incoming files, default /tmp/iwyu-go-server.", "/tmp/iwyu-go-server",
		"working-dir", "")
	logFileName := common.CmdEnvString("A filename to log, by default use stderr.", "",
		"log-filename", "")
	logVerbosity := common.CmdEnvInt("Logger verbosity level for INFO (-1 off, default 0, max 2).\nErrors are logged always.", 0,
		"log-verbosity", "")
	srcCacheLimit := common.CmdEnvInt("Header and source cache limit, in bytes, default 4G.", 4*1024*1024*1024,
		"src-cache-limit", "")
	resultCacheLimit := common.CmdEnvInt("Diff result cache limit, in bytes, default 1G.", 1*1024*1024*1024,
		"result-cache-limit", "")
	maxParallelAnalyses := common.CmdEnvInt("Max number of translation units analyzed concurrently, default 4.", int64(0),
		"parallel", "")
	inactiveClientTimeout := common.CmdEnvDuration("How long an idle client is kept before its working dir is dropped, default 10m.", 10*time.Minute,
		"client-timeout", "")
	statsdHostPort := common.CmdEnvString("Statsd udp address (host:port), omitted by default.\nIf omitted, stats won't be written.", "",
		"statsd", "")
	isystemDirs := common.CmdEnvString("Comma-separated -isystem search dirs.", "",
		"isystem", "")
	iquoteDirs := common.CmdEnvString("Comma-separated -iquote search dirs.", "",
		"iquote", "")
	iDirs := common.CmdEnvString("Comma-separated -I search dirs.", "",
		"I", "")
	configPath := common.CmdEnvString("Path to a project config file.", ".iwyugo.toml",
		"config", "")

	common.ParseCmdFlagsCombiningWithEnv()

	if *showVersionAndExit {
		fmt.Println(common.GetVersion())
		os.Exit(0)
	}

	if *maxParallelAnalyses <= 0 {
		*maxParallelAnalyses = 4
	}

	if err = cleanupWorkingDir(*workingDir); err != nil {
		failedStart("can't create working directory "+*workingDir, err)
	}

	if err = rpcserver.MakeLoggerServer(*logFileName, *logVerbosity); err != nil {
		failedStart("can't init logger", err)
	}

	s := &rpcserver.AnalysisServer{}

	s.Stats, err = metrics.MakeStatsd(*statsdHostPort)
	if err != nil {
		failedStart("failed to connect to statsd", err)
	}

	s.ActiveClients, err = rpcserver.MakeClientsStorage(path.Join(*workingDir, "clients"), *inactiveClientTimeout)
	if err != nil {
		failedStart("failed to init clients storage", err)
	}

	s.AnalysisLauncher, err = rpcserver.MakeAnalysisLauncher(*maxParallelAnalyses)
	if err != nil {
		failedStart("failed to init analysis launcher", err)
	}

	s.SourceCache, err = rpcserver.MakeFileCache(path.Join(*workingDir, "src-cache"), *srcCacheLimit)
	if err != nil {
		failedStart("failed to init source cache", err)
	}

	s.ResultCache, err = rpcserver.MakeFileCache(path.Join(*workingDir, "result-cache"), *resultCacheLimit)
	if err != nil {
		failedStart("failed to init result cache", err)
	}

	projectConfig, err := config.Load(*configPath)
	if err != nil {
		failedStart("failed to load config", err)
	}

	s.Picker = includepicker.NewIncludePicker()
	for _, mappingFile := range projectConfig.MappingFiles {
		if err = s.Picker.LoadMappingFile(mappingFile); err != nil {
			failedStart("failed to load mapping file "+mappingFile, err)
		}
	}
	if err = s.Picker.Finalize(); err != nil {
		failedStart("failed to finalize include picker", err)
	}

	s.SearchPaths = parseSearchPaths(*isystemDirs, *iquoteDirs, *iDirs, projectConfig.SearchPaths)
	s.ScanCache = frontend.NewScanCache()

	s.GRPCServer = grpc.NewServer()
	iwyugo.RegisterIwyuServiceServer(s.GRPCServer, s)

	s.Cron, err = rpcserver.MakeCron(s)
	if err != nil {
		failedStart("failed to init cron", err)
	}

	listener, err := s.StartGRPCListening(fmt.Sprintf("%s:%d", *bindHost, *listenPort))
	if err != nil {
		failedStart("failed to listen", err)
	}

	s.GRPCServer.Stop()
	_ = listener.Close()
}
