//go:build !unix

package server

import "os"

// shutdownSignals はサーバーを停止するシグナル
var shutdownSignals = []os.Signal{os.Interrupt}
