package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config はアプリケーション全体の設定を保持する構造体
// 起動時に一度だけ作成し、以降は変更しない
type Config struct {
	Server ServerConfig
	TLS    TLSConfig

	// Root は配信するディレクトリ
	Root string
}

// ServerConfig はHTTPSサーバーの設定
type ServerConfig struct {
	Host string // リッスンするホスト
	Port int    // リッスンするポート番号

	// MaxConns は同時に処理する接続数の上限 (0 は無制限)
	MaxConns int

	// ShutdownTimeout は停止時に処理中の接続を待つ時間
	ShutdownTimeout time.Duration
}

// TLSConfig は証明書と秘密鍵のファイル設定
type TLSConfig struct {
	CertFile string // 証明書ファイル (相対パスは Root からの相対)
	KeyFile  string // 秘密鍵ファイル (相対パスは Root からの相対)
}

// Load は設定を読み込む
// デフォルト値を環境変数で上書きする
func Load() (*Config, error) {
	root, err := defaultRoot()
	if err != nil {
		return nil, fmt.Errorf("配信ディレクトリの決定に失敗: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsIntOrDefault("PORT", 5500),
			MaxConns:        getEnvAsIntOrDefault("MAX_CONNS", 64),
			ShutdownTimeout: 5 * time.Second,
		},
		TLS: TLSConfig{
			CertFile: getEnvOrDefault("CERT_FILE", "cert.pem"),
			KeyFile:  getEnvOrDefault("KEY_FILE", "key.pem"),
		},
		Root: getEnvOrDefault("SERVE_ROOT", root),
	}

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("無効なポート番号: %d", c.Server.Port)
	}
	if c.Server.MaxConns < 0 {
		return fmt.Errorf("無効な同時接続数: %d", c.Server.MaxConns)
	}

	info, err := os.Stat(c.Root)
	if err != nil {
		return fmt.Errorf("配信ディレクトリを参照できません: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("配信ディレクトリではありません: %s", c.Root)
	}

	return nil
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// CertPath は証明書ファイルのパスを返す
func (c *Config) CertPath() string {
	return c.resolve(c.TLS.CertFile)
}

// KeyPath は秘密鍵ファイルのパスを返す
func (c *Config) KeyPath() string {
	return c.resolve(c.TLS.KeyFile)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Root, name)
}

// defaultRoot は実行ファイルが置かれたディレクトリを返す
func defaultRoot() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}
