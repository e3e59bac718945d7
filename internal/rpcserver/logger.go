package rpcserver

import "github.com/iwyu-go/iwyu-go/internal/common"

// anywhere in this package, use logServer.Info() and other methods for logging
var logServer *common.LoggerWrapper

func MakeLoggerServer(logFile string, verbosity int64) error {
	var err error
	logServer, err = common.MakeLogger(logFile, verbosity, false, false)
	return err
}
