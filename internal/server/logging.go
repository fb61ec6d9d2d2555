package server

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// LogFunc はログ1行を出力する関数
// log.Printf と同じ形をとる
type LogFunc func(format string, v ...any)

// logWriter は io.Writer への書き込みを LogFunc に渡す
type logWriter struct {
	logf LogFunc
}

func (w logWriter) Write(p []byte) (int, error) {
	w.logf("%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// accessLogger はリクエストごとにアクセスログを1行出力するミドルウェア
func accessLogger(logf LogFunc) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: formatAccessLog,
		Output:    logWriter{logf: logf},
	})
}

// formatAccessLog は接続元、リクエスト行、ステータス、サイズを並べる
//
//	192.168.1.20 - "GET /index.html HTTP/1.1" 200 1024 1.2ms 6f1c...
func formatAccessLog(param gin.LogFormatterParams) string {
	proto := "HTTP/1.1"
	if param.Request != nil {
		proto = param.Request.Proto
	}
	id, _ := param.Keys[requestIDKey].(string)

	return fmt.Sprintf("%s - \"%s %s %s\" %d %d %v %s\n",
		param.ClientIP,
		param.Method,
		param.Path,
		proto,
		param.StatusCode,
		param.BodySize,
		param.Latency,
		id,
	)
}
