package driverrun

import "github.com/iwyu-go/iwyu-go/internal/common"

// Log is the package-level logger for the driver, initialized once at
// process start. Use Log.Info()/Log.Error() anywhere in cmd/iwyu-go.
var Log *common.LoggerWrapper

func MakeLogger(logFile string, verbosity int64, noLogsIfEmpty bool) error {
	var err error
	Log, err = common.MakeLogger(logFile, verbosity, noLogsIfEmpty, true)
	return err
}
