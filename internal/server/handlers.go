package server

import (
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestIDKey はリクエストIDをginのコンテキストに保存するキー
const requestIDKey = "request_id"

// webXRTypes はWebXRのアセットで使う拡張子とContent-Typeの対応
var webXRTypes = map[string]string{
	".wasm":        "application/wasm",
	".mjs":         "text/javascript; charset=utf-8",
	".glb":         "model/gltf-binary",
	".gltf":        "model/gltf+json",
	".webmanifest": "application/manifest+json",
	".ktx2":        "image/ktx2",
	".hdr":         "image/vnd.radiance",
}

// staticHandler は配信ディレクトリのファイルを返すハンドラ
type staticHandler struct {
	root  http.FileSystem
	files http.Handler
}

// newStaticHandler は root を配信する staticHandler を作成する
func newStaticHandler(root string) *staticHandler {
	dir := http.Dir(root)
	return &staticHandler{
		root:  dir,
		files: http.FileServer(dir),
	}
}

// serve はファイル、ディレクトリ一覧、または404を返す
// 解決は http.FileServer に任せ、Content-Type だけを補う
func (h *staticHandler) serve(c *gin.Context) {
	if ct := h.contentType(c.Param("filepath")); ct != "" {
		c.Header("Content-Type", ct)
	}
	h.files.ServeHTTP(c.Writer, c.Request)
}

// contentType は name に対して明示するContent-Typeを返す
// 空文字の場合は http.FileServer の推定に任せる
// 通常ファイルをそのまま返す場合だけ値を返し、リダイレクトや一覧には付けない
func (h *staticHandler) contentType(name string) string {
	// 末尾スラッシュ付きのファイルと index.html は http.FileServer がリダイレクトする
	if strings.HasSuffix(name, "/") || strings.HasSuffix(name, "/index.html") {
		return ""
	}

	f, err := h.root.Open(path.Clean("/" + name))
	if err != nil {
		return ""
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}

	ext := strings.ToLower(path.Ext(name))
	if ct, ok := webXRTypes[ext]; ok {
		return ct
	}
	if ext != "" && mime.TypeByExtension(ext) != "" {
		return ""
	}

	// 拡張子から判断できないファイルは中身から推定する
	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return ""
	}
	return mt.String()
}

// requestID は各リクエストにIDを付与するミドルウェア
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(requestIDKey, id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}
