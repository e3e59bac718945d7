package rpcserver

import (
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Cron ticks in the background, flushing stats, purging the diff-result
// cache, and dropping inactive clients.
type Cron struct {
	stopFlag bool
	signals  chan os.Signal

	server *AnalysisServer
}

func MakeCron(server *AnalysisServer) (*Cron, error) {
	return &Cron{server: server}, nil
}

func (c *Cron) doCron() {
	const cronTickInterval = 5 * time.Second

	for !c.stopFlag {
		cronStartTime := time.Now()

		c.server.Stats.SendToStatsd(c.server, logServer)
		c.server.ResultCache.PurgeLastElementsIfRequired()
		c.server.SourceCache.PurgeLastElementsIfRequired()
		c.server.ActiveClients.DeleteInactiveClients()
		logServer.Info(1, "cron tick", "activeClients", c.server.ActiveClients.ActiveCount(), "activeSessions", c.server.ActiveClients.ActiveSessionsCount(), "sourceCacheFiles", c.server.SourceCache.GetFilesCount())

		sleepTime := cronTickInterval - time.Since(cronStartTime)
		if sleepTime <= 0 {
			sleepTime = time.Nanosecond
		}
		for sleepTime > 0 {
			select {
			case sig := <-c.signals:
				logServer.Info(0, "got signal", sig)
				if sig == syscall.SIGTERM {
					go c.server.QuitServerGracefully()
				}
			case <-time.After(sleepTime):
			}
			sleepTime = cronTickInterval - time.Since(cronStartTime)
		}
	}
}

func (c *Cron) StartCron() {
	c.signals = make(chan os.Signal, 2)
	signal.Notify(c.signals, syscall.SIGTERM)
	c.doCron()
}

func (c *Cron) StopCron() {
	c.stopFlag = true
}
