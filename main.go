// Package main はxrserveサーバーコマンドの実装です
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"xrserve/internal/config"
	"xrserve/internal/server"

	"github.com/gin-gonic/gin"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run はサーバーを実行し、終了コードを返す
// 0: シグナルによる停止, 1: 設定・証明書・実行時のエラー, 2: 不正なオプション
func run(args []string) int {
	// コマンドラインオプション (すべて省略可能)
	fs := flag.NewFlagSet("xrserve", flag.ContinueOnError)
	var (
		host = fs.String("host", "", "サーバーのホスト (デフォルト: 0.0.0.0)")
		port = fs.Int("port", 0, "サーバーのポート (デフォルト: 5500)")
		root = fs.String("root", "", "配信ディレクトリ (デフォルト: 実行ファイルのディレクトリ)")
		help = fs.Bool("help", false, "ヘルプを表示")
	)

	if err := fs.Parse(args); err != nil {
		return 2
	}

	// ヘルプ表示
	if *help {
		fmt.Println("xrserve")
		fmt.Println()
		fmt.Println("使用方法:")
		fmt.Println("  xrserve [オプション]")
		fmt.Println()
		fmt.Println("オプション:")
		fs.SetOutput(os.Stdout)
		fs.PrintDefaults()
		return 0
	}

	// ログは標準出力へ
	log.SetOutput(os.Stdout)
	gin.SetMode(gin.ReleaseMode)

	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		log.Printf("設定の読み込みに失敗しました: %v", err)
		return 1
	}

	// コマンドラインオプションで設定を上書き
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *root != "" {
		cfg.Root = *root
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("設定の検証に失敗しました: %v", err)
		return 1
	}

	srv := server.New(cfg)

	if err := srv.Start(context.Background()); err != nil {
		log.Printf("サーバーエラー: %v", err)
		return 1
	}

	fmt.Println()
	fmt.Println("サーバーを停止しました")
	return 0
}
