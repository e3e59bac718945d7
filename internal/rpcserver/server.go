package rpcserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"time"

	"github.com/iwyu-go/iwyu-go/internal/common"
	"github.com/iwyu-go/iwyu-go/internal/frontend"
	"github.com/iwyu-go/iwyu-go/internal/includepicker"
	"github.com/iwyu-go/iwyu-go/internal/metrics"
	"github.com/iwyu-go/iwyu-go/internal/pathutil"
	"github.com/iwyu-go/iwyu-go/rpc/iwyugo"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AnalysisServer stores all server state and serves grpc requests. Multiple
// iwyu-go-server processes can run on different shards, with iwyu-go clients
// balancing between them by translation-unit basename, exactly like nocc
// balances compilation requests.
type AnalysisServer struct {
	iwyugo.UnimplementedIwyuServiceServer
	GRPCServer *grpc.Server

	startTime time.Time

	Cron             *Cron
	Stats            *metrics.Statsd
	ActiveClients    *ClientsStorage
	AnalysisLauncher *AnalysisLauncher

	Picker      *includepicker.IncludePicker
	SearchPaths *pathutil.SearchPathIndex
	ScanCache   *frontend.ScanCache

	SourceCache *FileCache
	ResultCache *FileCache
}

func launchAnalysisOnServerOnReadySessions(s *AnalysisServer, client *Client) {
	for _, session := range client.GetSessionsNotStartedAnalysis() {
		session.StartAnalyzingIfPossible(s)
	}
}

// StartGRPCListening is an entrypoint called from main() of iwyu-go-server.
// It either returns an error or serves grpc requests until the server is
// stopped (see QuitServerGracefully).
func (s *AnalysisServer) StartGRPCListening(listenAddr string) (net.Listener, error) {
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, err
	}

	s.startTime = time.Now()
	go s.Cron.StartCron()

	logServer.Info(0, "iwyu-go-server started")
	logServer.Info(0, "env:", "listenAddr", listenAddr, "; num cpu", runtime.NumCPU(), "; version", common.GetVersion())

	return listener, s.GRPCServer.Serve(listener)
}

// QuitServerGracefully closes all active clients and stops accepting new
// connections. After it returns, StartGRPCListening returns and main()
// continues.
func (s *AnalysisServer) QuitServerGracefully() {
	logServer.Info(0, "graceful stop...")

	s.Stats.Close()
	s.Cron.StopCron()
	s.ActiveClients.StopAllClients()
	s.GRPCServer.GracefulStop()
}

func (s *AnalysisServer) StartClient(_ context.Context, in *iwyugo.StartClientRequest) (*iwyugo.StartClientReply, error) {
	client, err := s.ActiveClients.OnClientConnected(in.ClientId)
	if err != nil {
		return nil, err
	}

	logServer.Info(0, "new client", "clientID", client.clientID, "version", in.ClientVersion, "; nClients", s.ActiveClients.ActiveCount())
	return &iwyugo.StartClientReply{}, nil
}

func (s *AnalysisServer) StopClient(_ context.Context, in *iwyugo.StopClientRequest) (*iwyugo.StopClientReply, error) {
	client := s.ActiveClients.GetClient(in.ClientId)
	if client != nil {
		logServer.Info(0, "client disconnected", "clientID", client.clientID, "; nClients", s.ActiveClients.ActiveCount()-1)
		go s.ActiveClients.DeleteClient(client)
	}
	return &iwyugo.StopClientReply{}, nil
}

// StartAnalysisSession is a grpc handler. A client sends the root file of a
// translation unit plus every file reachable from it (the serialized AST
// fixture and every header its own-includes scan found). The server
// responds with which of those it doesn't already have cached, which the
// client must upload before analysis can start.
func (s *AnalysisServer) StartAnalysisSession(_ context.Context, in *iwyugo.StartAnalysisSessionRequest) (*iwyugo.StartAnalysisSessionReply, error) {
	client := s.ActiveClients.GetClient(in.ClientId)
	if client == nil {
		logServer.Error("unauthenticated client on session start", "clientID", in.ClientId)
		return nil, status.Errorf(codes.Unauthenticated, "clientID %s not found; probably, the server was restarted just now", in.ClientId)
	}

	requiredFiles := make([]RequiredFileMeta, len(in.RequiredFiles))
	for i, meta := range in.RequiredFiles {
		requiredFiles[i] = RequiredFileMeta{
			ClientFileName: meta.ClientFileName,
			FileSize:       meta.FileSize,
			SHA256: common.SHA256{
				B0_7: meta.Sha256B0_7, B8_15: meta.Sha256B8_15,
				B16_23: meta.Sha256B16_23, B24_31: meta.Sha256B24_31,
			},
		}
	}

	session, err := client.StartNewSession(in.SessionId, in.CppInFile, in.OutputFormat, requiredFiles)
	if err != nil {
		logServer.Error("failed to open session", "clientID", in.ClientId, "sessionID", in.SessionId, err)
		return nil, err
	}

	session.resultCacheKey = MakeResultCacheKey(session.outputFormat, session.cppInFile, session.files)
	if pathInCache := s.ResultCache.LookupInCache(session.resultCacheKey); pathInCache != "" {
		if contents, err := os.ReadFile(pathInCache); err == nil {
			session.diffOutput = contents
			session.resultCacheExists = true
			logServer.Info(0, "started", "sessionID", session.sessionID, "clientID", client.clientID, "from result cache", in.CppInFile)
			session.StartAnalyzingIfPossible(s)
			return &iwyugo.StartAnalysisSessionReply{}, nil
		}
	}

	fileIndexesToUpload := make([]uint32, 0, len(session.files))
	for index, file := range session.files {
		switch file.state {
		case fsFileStateJustCreated:
			file.state = fsFileStateUploading
			file.uploadStartTime = time.Now()

			if s.SourceCache.CreateHardLinkFromCache(file.serverFileName, file.fileSHA256) {
				logServer.Info(2, "file", file.serverFileName, "is in source cache, no need to upload")
				file.state = fsFileStateUploaded
				continue
			}

			fileIndexesToUpload = append(fileIndexesToUpload, uint32(index))

		case fsFileStateUploading, fsFileStateUploadError:
			file.state = fsFileStateUploading
			file.uploadStartTime = time.Now()
			fileIndexesToUpload = append(fileIndexesToUpload, uint32(index))

		case fsFileStateUploaded:
		}
	}

	logServer.Info(0, "started", "sessionID", session.sessionID, "clientID", client.clientID, "waiting", len(fileIndexesToUpload), "uploads", in.CppInFile)
	launchAnalysisOnServerOnReadySessions(s, client)

	return &iwyugo.StartAnalysisSessionReply{FileIndexesToUpload: fileIndexesToUpload}, nil
}

// UploadFileStream handles a grpc stream a client opens when the server
// asked for files it doesn't have cached yet.
func (s *AnalysisServer) UploadFileStream(stream iwyugo.IwyuService_UploadFileStreamServer) error {
	for {
		firstChunk, err := stream.Recv()
		if err != nil {
			if stream.Context().Err() != context.Canceled {
				logServer.Error("stream receive error:", err.Error())
			}
			return err
		}

		client := s.ActiveClients.GetClient(firstChunk.ClientId)
		if client == nil {
			logServer.Error("unauthenticated client on upload stream", "clientID", firstChunk.ClientId)
			return status.Errorf(codes.Unauthenticated, "client %s not found", firstChunk.ClientId)
		}
		client.lastSeen = time.Now()

		session := client.GetSession(firstChunk.SessionId)
		if session == nil || int(firstChunk.FileIndex) >= len(session.files) {
			logServer.Error("bad sessionID/fileIndex on upload", "clientID", client.clientID, "sessionID", firstChunk.SessionId)
			return fmt.Errorf("unknown sessionID %d with index %d", firstChunk.SessionId, firstChunk.FileIndex)
		}

		file := session.files[firstChunk.FileIndex]

		if err := receiveUploadedFileByChunks(stream, firstChunk, int(file.fileSize), file.serverFileName); err != nil {
			file.state = fsFileStateUploadError
			logServer.Error("fs uploading->error", "sessionID", session.sessionID, file.clientFileName, err)
			return fmt.Errorf("can't receive file %q: %v", file.clientFileName, err)
		}

		logServer.Info(2, "received", file.fileSize, "bytes", "sessionID", session.sessionID, file.clientFileName)
		file.state = fsFileStateUploaded
		_ = s.SourceCache.SaveFileToCache(file.serverFileName, file.clientFileName, file.fileSHA256, file.fileSize)

		launchAnalysisOnServerOnReadySessions(s, session.client)
		if err := stream.Send(&iwyugo.UploadFileReply{}); err != nil {
			return err
		}
	}
}

// RecvDiffStream handles a grpc stream created when a client opens it; the
// server pushes each session's diff as soon as analysis finishes.
func (s *AnalysisServer) RecvDiffStream(in *iwyugo.OpenReceiveStreamRequest, stream iwyugo.IwyuService_RecvDiffStreamServer) error {
	client := s.ActiveClients.GetClient(in.ClientId)
	if client == nil {
		logServer.Error("unauthenticated client on recv stream", "clientID", in.ClientId)
		return status.Errorf(codes.Unauthenticated, "client %s not found", in.ClientId)
	}
	chunkBuf := make([]byte, 64*1024)

	for {
		select {
		case <-client.chanDisconnected:
			return nil

		case session := <-client.chanReadySessions:
			client.lastSeen = time.Now()

			if err := sendDiffByChunks(stream, chunkBuf, session); err != nil {
				logServer.Error("can't send diff sessionID", session.sessionID, "clientID", client.clientID, err)
				return err
			}

			client.CloseSession(session)
			logServer.Info(2, "close", "sessionID", session.sessionID, "clientID", client.clientID)
		}
	}
}

func (s *AnalysisServer) Status(context.Context, *iwyugo.StatusRequest) (*iwyugo.StatusReply, error) {
	logServer.Info(0, "requested status")

	return &iwyugo.StatusReply{
		ServerVersion:        common.GetVersion(),
		ServerArgs:           os.Args,
		ServerUptimeNs:       int64(time.Since(s.startTime)),
		LogFileSize:          logServer.GetFileSize(),
		SourceCacheSize:      s.SourceCache.GetBytesOnDisk(),
		ResultCacheSize:      s.ResultCache.GetBytesOnDisk(),
		SessionsTotal:        s.ActiveClients.CompletedCount() + s.ActiveClients.ActiveSessionsCount(),
		SessionsActive:       s.ActiveClients.ActiveSessionsCount(),
		AnalysisCalls:        s.AnalysisLauncher.GetTotalAnalysisCallsCount(),
		AnalysisDurMore_1Sec: s.AnalysisLauncher.GetMore1secCount(),
		AnalysisDurMore_5Sec: s.AnalysisLauncher.GetMore5secCount(),
	}, nil
}

func (s *AnalysisServer) DumpLogs(_ *iwyugo.DumpLogsRequest, stream iwyugo.IwyuService_DumpLogsServer) error {
	logServer.Info(0, "requested to dump logs")

	currentLog := logServer.GetFileName()
	if currentLog == "" {
		return errors.New("can't dump logs, as they aren't being saved to file")
	}

	err := sendLogFileByChunks(stream, currentLog, ".log")
	if err != nil {
		return err
	}
	_ = sendLogFileByChunks(stream, currentLog+".1.gz", ".log.1.gz")
	_ = sendLogFileByChunks(stream, common.ReplaceFileExt(currentLog, ".err.log"), ".log.err")

	return stream.Send(&iwyugo.DumpLogsReply{LogFileExt: ""})
}

// DropAllCaches drops the source and result caches without restarting a
// server. Used primarily for development purposes.
func (s *AnalysisServer) DropAllCaches(context.Context, *iwyugo.DropAllCachesRequest) (*iwyugo.DropAllCachesReply, error) {
	logServer.Info(0, "requested to drop all caches")

	return &iwyugo.DropAllCachesReply{
		DroppedSourceFiles: s.SourceCache.DropAll(),
		DroppedResultFiles: s.ResultCache.DropAll(),
	}, nil
}

// metrics.ServerStats implementation, so Cron can hand *AnalysisServer
// straight to Stats.SendToStatsd.

func (s *AnalysisServer) StartTime() time.Time          { return s.startTime }
func (s *AnalysisServer) ActiveSessionsCount() int64    { return s.ActiveClients.ActiveSessionsCount() }
func (s *AnalysisServer) CompletedSessionsCount() int64 { return s.ActiveClients.CompletedCount() }
func (s *AnalysisServer) SourceCacheFilesCount() int64  { return s.SourceCache.GetFilesCount() }
func (s *AnalysisServer) SourceCacheBytesOnDisk() int64 { return s.SourceCache.GetBytesOnDisk() }
func (s *AnalysisServer) ResultCacheFilesCount() int64  { return s.ResultCache.GetFilesCount() }
