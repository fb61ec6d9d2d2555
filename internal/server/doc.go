// Package server は、WebXRクライアント向けのHTTPS静的ファイルサーバーを提供します。
//
// このパッケージは、TLSリスナーの作成、静的ファイルの配信、
// アクセスログの出力、シグナルによる停止を担当します。
//
// 責務:
//   - TCPリスナーの作成と同時接続数の制限
//   - TLSハンドシェイク（クライアント証明書は要求しない）
//   - 配信ディレクトリからの静的ファイル配信（index.html、ディレクトリ一覧、404）
//   - リクエストごとのアクセスログ出力
//   - SIGINT/SIGTERMでの停止とリスナーの解放
//
// 仕様:
//   - HTTPエンジンはgin-gonic/ginを使用
//   - ファイルの解決は標準ライブラリのhttp.FileServerに任せる
//   - 拡張子で判断できないファイルはgabriel-vasile/mimetypeで推定
//   - 同時接続数はgolang.org/x/net/netutilで制限
package server
