package rpcserver

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/iwyu-go/iwyu-go/rpc/iwyugo"
)

// receiveUploadedFileByChunks pipes a client stream to a local server file.
// No client in this repository sends these chunks; cmd/iwyu-go runs the
// engine in-process.
func receiveUploadedFileByChunks(stream iwyugo.IwyuService_UploadFileStreamServer, firstChunk *iwyugo.UploadFileChunkRequest, expectedBytes int, serverFileName string) (err error) {
	receivedBytes := len(firstChunk.ChunkBody)

	// write to a tmp file and rename it into place after saving, so a
	// second upload of the same file racing this one never serves a
	// half-written file
	fileTmp, err := os.CreateTemp(path.Dir(serverFileName), "tmp-upload-*")
	if err == nil {
		_, err = fileTmp.Write(firstChunk.ChunkBody)
	}

	var nextChunk *iwyugo.UploadFileChunkRequest
	for receivedBytes < expectedBytes && err == nil {
		nextChunk, err = stream.Recv()
		if err != nil { // EOF is also unexpected
			break
		}
		_, err = fileTmp.Write(nextChunk.ChunkBody)
		if nextChunk.SessionId != firstChunk.SessionId || nextChunk.FileIndex != firstChunk.FileIndex {
			err = fmt.Errorf("inconsistent stream, chunks mismatch")
		}
		receivedBytes += len(nextChunk.ChunkBody)
	}

	if fileTmp != nil {
		_ = fileTmp.Close()
		if err == nil {
			err = os.Rename(fileTmp.Name(), serverFileName)
		}
		if err != nil {
			_ = os.Remove(fileTmp.Name())
		}
	}
	return
}

// sendDiffByChunks streams a session's rendered diff output back to a
// client, matching the chunked-transfer shape every other stream in this
// package uses even though a diff is rarely larger than one chunk.
func sendDiffByChunks(stream iwyugo.IwyuService_RecvDiffStreamServer, chunkBuf []byte, session *Session) error {
	contents := session.diffOutput
	if len(contents) == 0 {
		return stream.Send(&iwyugo.RecvDiffChunkReply{
			SessionId:          session.sessionID,
			ViolationsFound:    session.violationsFound,
			AnalysisDurationMs: int64(session.analysisDuration),
			IsLastChunk:        true,
		})
	}

	for offset := 0; offset < len(contents); offset += len(chunkBuf) {
		end := offset + len(chunkBuf)
		if end > len(contents) {
			end = len(contents)
		}
		err := stream.Send(&iwyugo.RecvDiffChunkReply{
			SessionId:          session.sessionID,
			ViolationsFound:    session.violationsFound,
			AnalysisDurationMs: int64(session.analysisDuration),
			ChunkBody:          contents[offset:end],
			IsLastChunk:        end == len(contents),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// sendLogFileByChunks streams a local server log file, for remote debugging
// without shell access to the server host.
func sendLogFileByChunks(stream iwyugo.IwyuService_DumpLogsServer, serverLogFileName string, clientLogExt string) error {
	chunkBuf := make([]byte, 1024*1024)
	fd, err := os.Open(serverLogFileName)
	if err != nil {
		return err
	}
	defer fd.Close()

	var n int
	for err == nil {
		n, err = fd.Read(chunkBuf)
		if err == io.EOF {
			break
		}
		err = stream.Send(&iwyugo.DumpLogsReply{
			LogFileExt: clientLogExt,
			ChunkBody:  chunkBuf[:n],
		})
	}

	return stream.Send(&iwyugo.DumpLogsReply{ChunkBody: nil}) // nil chunk means end of file
}
