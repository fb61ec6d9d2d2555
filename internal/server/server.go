package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"xrserve/internal/config"
	"xrserve/internal/identity"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/netutil"
)

// Server はHTTPSの静的ファイルサーバーを管理する構造体
type Server struct {
	config     *config.Config
	logf       LogFunc
	out        io.Writer
	engine     *gin.Engine
	httpServer *http.Server

	mu       sync.Mutex
	listener net.Listener
	ready    chan struct{}
}

// Option はServerの生成オプション
type Option func(*Server)

// WithLogger はアクセスログとエラーログの出力先を指定する
func WithLogger(logf LogFunc) Option {
	return func(s *Server) {
		if logf != nil {
			s.logf = logf
		}
	}
}

// WithOutput は起動メッセージの出力先を指定する
func WithOutput(w io.Writer) Option {
	return func(s *Server) {
		if w != nil {
			s.out = w
		}
	}
}

// New は新しいServerインスタンスを作成する
func New(cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		config: cfg,
		logf:   log.Printf,
		out:    os.Stdout,
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = s.newEngine()
	s.httpServer = &http.Server{
		Handler:  s.engine,
		ErrorLog: log.New(logWriter{logf: s.logf}, "", 0),
	}

	return s
}

// newEngine はginエンジンを作成し、ルートを設定する
func (s *Server) newEngine() *gin.Engine {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	// アクセスログには接続元のアドレスをそのまま使う
	if err := engine.SetTrustedProxies(nil); err != nil {
		s.logf("信頼するプロキシの設定に失敗: %v", err)
	}

	engine.Use(
		gin.RecoveryWithWriter(logWriter{logf: s.logf}),
		requestID(),
		accessLogger(s.logf),
	)

	static := newStaticHandler(s.config.Root)
	engine.GET("/*filepath", static.serve)
	engine.HEAD("/*filepath", static.serve)

	return engine
}

// Ready はリッスンを開始すると閉じられるチャンネルを返す
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr はリッスン中のアドレスを返す。リッスン前はnil
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// listen はTCPリスナーを作成し、同時接続数の制限とTLSで包む
func (s *Server) listen(id *identity.Identity) (net.Listener, error) {
	ln, err := net.Listen("tcp", s.config.ServerAddress())
	if err != nil {
		return nil, fmt.Errorf("リッスンに失敗: %w", err)
	}

	if s.config.Server.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.config.Server.MaxConns)
	}

	// 受け付けた接続はHTTPの解析前に必ずTLSハンドシェイクを行う
	ln = tls.NewListener(ln, id.TLSConfig())

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	return ln, nil
}

// Start はサーバーを起動する
// コンテキストのキャンセルまたはシグナルで停止した場合はnilを返す
func (s *Server) Start(ctx context.Context) error {
	// シグナルは起動処理の前から受け取る
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	defer signal.Stop(sigCh)

	// 証明書を確認してからソケットを開く
	id, err := identity.Load(s.config.CertPath(), s.config.KeyPath())
	if err != nil {
		return err
	}

	ln, err := s.listen(id)
	if err != nil {
		return err
	}

	printBanner(s.out, bannerInfo{
		Addr:     ln.Addr(),
		Host:     s.config.Server.Host,
		Root:     s.config.Root,
		Identity: id,
		Now:      time.Now(),
	})
	close(s.ready)

	// シャットダウン用のチャンネル
	shutdownCh := make(chan error, 1)

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownCh <- fmt.Errorf("サーバーの実行に失敗: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logf("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		s.logf("シグナルを受信しました: %v", sig)
	case err := <-shutdownCh:
		return err
	}

	return s.Shutdown()
}

// Shutdown はサーバーを停止し、リスナーを解放する
func (s *Server) Shutdown() error {
	s.logf("サーバーをシャットダウンしています...")

	timeout := s.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		// 応答の遅いクライアントが接続を保持している
		s.logf("処理中の接続を待たずに終了します: %v", err)
		if err := s.httpServer.Close(); err != nil {
			return fmt.Errorf("サーバーのクローズに失敗: %w", err)
		}
	}

	return nil
}
