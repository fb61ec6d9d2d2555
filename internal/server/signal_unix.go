//go:build unix

package server

import (
	"os"

	"golang.org/x/sys/unix"
)

// shutdownSignals はサーバーを停止するシグナル
var shutdownSignals = []os.Signal{unix.SIGINT, unix.SIGTERM}
