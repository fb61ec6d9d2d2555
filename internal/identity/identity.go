// Package identity はサーバーのTLSアイデンティティ（証明書と秘密鍵）を扱います。
//
// 証明書は起動時に一度だけ読み込み、以降の差し替えや再読み込みは行いません。
// クライアント証明書の要求・検証は行いません。ヘッドセットのブラウザが
// 自己署名証明書を検証できないため、この緩い設定を前提としています。
package identity

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// ErrNotFound は証明書または秘密鍵のファイルが存在しないことを表す
var ErrNotFound = errors.New("証明書ファイルが見つかりません")

// Identity は読み込み済みの証明書と秘密鍵
type Identity struct {
	Certificate tls.Certificate
	Leaf        *x509.Certificate
}

// Load は証明書と秘密鍵を読み込む
// どちらかが存在しない場合、存在しないファイルをすべて列挙したエラーを返す
func Load(certFile, keyFile string) (*Identity, error) {
	var missing []string
	for _, name := range []string{certFile, keyFile} {
		if _, err := os.Stat(name); err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, strings.Join(missing, ", "))
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("証明書の読み込みに失敗: %w", err)
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("証明書の解析に失敗: %w", err)
	}
	cert.Leaf = leaf

	return &Identity{
		Certificate: cert,
		Leaf:        leaf,
	}, nil
}

// TLSConfig はサーバー用のTLS設定を返す
func (id *Identity) TLSConfig() *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{id.Certificate},
		// クライアント証明書は要求しない
		ClientAuth: tls.NoClientCert,
		MinVersion: tls.VersionTLS12,
		NextProtos: []string{"http/1.1"},
	}
}

// Validity は証明書の有効期限を表示用の文字列で返す
func (id *Identity) Validity(now time.Time) string {
	notAfter := id.Leaf.NotAfter
	date := notAfter.Local().Format("2006-01-02")

	switch {
	case now.Before(id.Leaf.NotBefore):
		return fmt.Sprintf("%s 以降に有効 (まだ有効期間前です)", id.Leaf.NotBefore.Local().Format("2006-01-02"))
	case now.After(notAfter):
		return fmt.Sprintf("%s に期限切れ", date)
	}

	days := int(notAfter.Sub(now).Hours() / 24)
	return fmt.Sprintf("%s まで有効 (残り %d 日)", date, days)
}

// SelfSigned は自己署名証明書かどうかを返す
// CA:FALSE のサーバー証明書も対象にするため、署名だけを自身の公開鍵で確認する
func (id *Identity) SelfSigned() bool {
	leaf := id.Leaf
	if !bytes.Equal(leaf.RawIssuer, leaf.RawSubject) {
		return false
	}
	return leaf.CheckSignature(leaf.SignatureAlgorithm, leaf.RawTBSCertificate, leaf.Signature) == nil
}
