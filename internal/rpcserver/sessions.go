package rpcserver

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iwyu-go/iwyu-go/internal/common"
)

const (
	fsFileStateJustCreated = iota
	fsFileStateUploading
	fsFileStateUploadError
	fsFileStateUploaded
)

// fileInClientDir describes one file of a translation unit on the server
// file system, inside a client working dir. When multiple iwyu-go processes
// connect with the same clientID, they share one working dir and one
// dedupe-by-sha256 table, so an unchanged header uploaded by an earlier
// session is never re-requested.
type fileInClientDir struct {
	fileSize   int64
	fileSHA256 common.SHA256

	state           int // fsFileState*
	uploadStartTime time.Time

	clientFileName string // as named in the request, for present-line bookkeeping
	serverFileName string // abs path under the client's working dir
}

// Client represents one iwyu-go process connected to the server. A stable
// clientID lets repeated invocations from the same checkout share a working
// dir and its cached files across process restarts.
type Client struct {
	clientID   string
	workingDir string
	lastSeen   time.Time

	mu       sync.RWMutex
	sessions map[uint32]*Session
	files    map[string]*fileInClientDir

	chanDisconnected  chan struct{}
	chanReadySessions chan *Session
}

func (client *Client) makeNewFile(clientFileName string, fileSize int64, fileSHA256 common.SHA256) *fileInClientDir {
	return &fileInClientDir{
		fileSize:        fileSize,
		fileSHA256:      fileSHA256,
		clientFileName:  clientFileName,
		serverFileName:  client.mapClientFileNameToServerAbs(clientFileName),
		state:           fsFileStateJustCreated,
		uploadStartTime: time.Now(),
	}
}

func (client *Client) mapClientFileNameToServerAbs(clientFileName string) string {
	if clientFileName != "" && clientFileName[0] == '/' {
		return client.workingDir + clientFileName
	}
	return path.Join(client.workingDir, clientFileName)
}

// Session is created when a client asks the server to analyze one
// translation unit. Its lifetime:
//  1. the session is created, listing the root file and every file its
//     own-includes scan found reachable from it (plus a serialized AST
//     fixture standing in for the out-of-scope front end);
//  2. files the server doesn't already have cached are uploaded;
//  3. the engine runs once every file is uploaded;
//  4. the client downloads the rendered diff;
//  5. the session is closed.
// Steps 2-4 are skipped if an identical translation unit's diff is already
// in the result cache.
type Session struct {
	sessionID uint32

	cppInFile    string
	outputFormat string

	client *Client
	files  []*fileInClientDir

	resultCacheKey    common.SHA256
	resultCacheExists bool
	analysisStarted   int32

	diffOutput       []byte
	violationsFound  int32
	analysisDuration int32
	analysisErr      string
}

func (client *Client) StartNewSession(sessionID uint32, cppInFile, outputFormat string, requiredFiles []RequiredFileMeta) (*Session, error) {
	newSession := &Session{
		sessionID:    sessionID,
		cppInFile:    cppInFile,
		outputFormat: outputFormat,
		files:        make([]*fileInClientDir, len(requiredFiles)),
		client:       client,
	}

	for index, meta := range requiredFiles {
		file, err := client.startUsingFileInSession(meta.ClientFileName, meta.FileSize, meta.SHA256)
		newSession.files[index] = file
		if err != nil {
			return nil, err
		}
	}

	client.mu.Lock()
	client.sessions[newSession.sessionID] = newSession
	client.mu.Unlock()

	return newSession, nil
}

// RequiredFileMeta is the rpc-layer-agnostic form of one file a translation
// unit depends on; server.go builds it from the generated pb request type.
type RequiredFileMeta struct {
	ClientFileName string
	FileSize       int64
	SHA256         common.SHA256
}

func (client *Client) startUsingFileInSession(clientFileName string, fileSize int64, fileSHA256 common.SHA256) (*fileInClientDir, error) {
	client.mu.RLock()
	file := client.files[clientFileName]
	client.mu.RUnlock()

	if file == nil {
		client.mu.Lock()
		file = client.files[clientFileName]
		if file != nil {
			client.mu.Unlock()
			return file, nil
		}
		newFile := client.makeNewFile(clientFileName, fileSize, fileSHA256)
		client.files[clientFileName] = newFile
		client.mu.Unlock()
		return newFile, nil
	}

	if file.fileSHA256 != fileSHA256 {
		return nil, fmt.Errorf("file %s was already uploaded, but now got another sha256 from client", clientFileName)
	}

	return file, nil
}

func (client *Client) CloseSession(session *Session) {
	client.mu.Lock()
	delete(client.sessions, session.sessionID)
	client.mu.Unlock()
	session.files = nil
}

func (client *Client) GetSession(sessionID uint32) *Session {
	client.mu.RLock()
	session := client.sessions[sessionID]
	client.mu.RUnlock()
	return session
}

func (client *Client) GetActiveSessionsCount() int {
	client.mu.RLock()
	count := len(client.sessions)
	client.mu.RUnlock()
	return count
}

func (client *Client) GetSessionsNotStartedAnalysis() []*Session {
	sessions := make([]*Session, 0)
	client.mu.RLock()
	for _, session := range client.sessions {
		if atomic.LoadInt32(&session.analysisStarted) == 0 {
			sessions = append(sessions, session)
		}
	}
	client.mu.RUnlock()
	return sessions
}

// StartAnalyzingIfPossible launches the engine once every required file of
// the session has been uploaded (or immediately, from the result cache).
func (session *Session) StartAnalyzingIfPossible(s *AnalysisServer) {
	if session.resultCacheExists {
		if atomic.SwapInt32(&session.analysisStarted, 1) == 0 {
			logServer.Info(2, "get diff from result cache", "sessionID", session.sessionID, session.cppInFile)
			session.PushToClientReadyChannel()
		}
		return
	}

	for _, file := range session.files {
		if file.state != fsFileStateUploaded {
			return
		}
	}

	if atomic.SwapInt32(&session.analysisStarted, 1) == 0 {
		go s.AnalysisLauncher.LaunchAnalysisWhenPossible(s, session)
	}
}

// MakeResultCacheKey hashes everything that determines a translation unit's
// diff output, so an unchanged .cc (recompiled with the same dependency set)
// can skip re-running the engine. Grounded on
// internal/server/obj-cache.go's MakeObjCacheKey: a running sha256 of the
// fixed inputs (output format, root file basename), XORed with every
// dependency's own content hash so dependency order doesn't matter.
func MakeResultCacheKey(outputFormat, cppInFile string, sessionFiles []*fileInClientDir) common.SHA256 {
	hasher := sha256.New()
	hasher.Write([]byte(outputFormat))
	hasher.Write([]byte(path.Base(cppInFile)))

	key := common.MakeSHA256Struct(hasher)
	key.B16_23 ^= uint64(len(sessionFiles))
	for _, file := range sessionFiles {
		key.XorWith(&file.fileSHA256)
		key.B0_7 ^= uint64(file.fileSize)
	}
	return key
}

func (session *Session) PushToClientReadyChannel() {
	select {
	case <-session.client.chanDisconnected:
	case session.client.chanReadySessions <- session:
	}
}

func (client *Client) RemoveWorkingDir() {
	client.mu.Lock()
	_ = os.RemoveAll(client.workingDir)
	client.files = make(map[string]*fileInClientDir)
	client.mu.Unlock()
}

func (client *Client) FilesCount() int64 {
	client.mu.RLock()
	filesCount := len(client.files)
	client.mu.RUnlock()
	return int64(filesCount)
}

// ClientsStorage contains every client currently connected to this server.
// After a client is inactive for too long, it's deleted along with its
// working directory.
type ClientsStorage struct {
	table map[string]*Client
	mu    sync.RWMutex

	clientsDir string

	completedCount       int64
	lastPurgeTime        time.Time
	checkInactiveTimeout time.Duration
}

func MakeClientsStorage(clientsDir string, checkInactiveTimeout time.Duration) (*ClientsStorage, error) {
	return &ClientsStorage{
		table:                make(map[string]*Client, 256),
		clientsDir:           clientsDir,
		checkInactiveTimeout: checkInactiveTimeout,
	}, nil
}

func (allClients *ClientsStorage) GetClient(clientID string) *Client {
	allClients.mu.RLock()
	client := allClients.table[clientID]
	allClients.mu.RUnlock()
	return client
}

func (allClients *ClientsStorage) OnClientConnected(clientID string) (*Client, error) {
	allClients.mu.RLock()
	client := allClients.table[clientID]
	allClients.mu.RUnlock()

	if client != nil {
		logServer.Info(0, "client reconnected, re-creating", "clientID", clientID)
		allClients.DeleteClient(client)
	}

	workingDir := path.Join(allClients.clientsDir, clientID)
	if err := os.MkdirAll(workingDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("can't create client working directory: %v", err)
	}

	client = &Client{
		clientID:          clientID,
		workingDir:        workingDir,
		lastSeen:          time.Now(),
		sessions:          make(map[uint32]*Session, 8),
		files:             make(map[string]*fileInClientDir, 256),
		chanDisconnected:  make(chan struct{}),
		chanReadySessions: make(chan *Session, 64),
	}

	allClients.mu.Lock()
	allClients.table[clientID] = client
	allClients.mu.Unlock()
	return client, nil
}

func (allClients *ClientsStorage) DeleteClient(client *Client) {
	allClients.mu.Lock()
	delete(allClients.table, client.clientID)
	allClients.mu.Unlock()
	atomic.AddInt64(&allClients.completedCount, 1)

	close(client.chanDisconnected)
	client.RemoveWorkingDir()
}

func (allClients *ClientsStorage) DeleteInactiveClients() {
	now := time.Now()
	if now.Sub(allClients.lastPurgeTime) < time.Minute {
		return
	}
	allClients.lastPurgeTime = now

	for {
		var inactiveClient *Client
		allClients.mu.RLock()
		for _, client := range allClients.table {
			if now.Sub(client.lastSeen) > allClients.checkInactiveTimeout {
				inactiveClient = client
				break
			}
		}
		allClients.mu.RUnlock()
		if inactiveClient == nil {
			break
		}

		logServer.Info(0, "delete inactive client", "clientID", inactiveClient.clientID, "num files", inactiveClient.FilesCount())
		allClients.DeleteClient(inactiveClient)
	}
}

func (allClients *ClientsStorage) StopAllClients() {
	allClients.mu.Lock()
	for _, client := range allClients.table {
		close(client.chanDisconnected)
	}
	allClients.table = make(map[string]*Client)
	allClients.mu.Unlock()
}

func (allClients *ClientsStorage) ActiveCount() int64 {
	allClients.mu.RLock()
	count := len(allClients.table)
	allClients.mu.RUnlock()
	return int64(count)
}

func (allClients *ClientsStorage) CompletedCount() int64 {
	return atomic.LoadInt64(&allClients.completedCount)
}

func (allClients *ClientsStorage) ActiveSessionsCount() int64 {
	allClients.mu.RLock()
	sessionsCount := 0
	for _, client := range allClients.table {
		sessionsCount += client.GetActiveSessionsCount()
	}
	allClients.mu.RUnlock()
	return int64(sessionsCount)
}
