// Package certtest はテスト用の自己署名証明書を生成します。
package certtest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Options は生成する証明書の設定
type Options struct {
	NotBefore time.Time
	NotAfter  time.Time

	// ServerOnly は CA:FALSE、鍵用途 DigitalSignature のみのサーバー証明書にする
	ServerOnly bool
}

// Write は dir に cert.pem と key.pem を書き出し、それぞれのパスを返す
func Write(t testing.TB, dir string) (certFile, keyFile string) {
	t.Helper()
	return WriteWith(t, dir, Options{})
}

// WriteValid は有効期間を指定して証明書を書き出す
func WriteValid(t testing.TB, dir string, notBefore, notAfter time.Time) (certFile, keyFile string) {
	t.Helper()
	return WriteWith(t, dir, Options{NotBefore: notBefore, NotAfter: notAfter})
}

// WriteWith は opts に従って証明書を書き出す
func WriteWith(t testing.TB, dir string, opts Options) (certFile, keyFile string) {
	t.Helper()

	if opts.NotBefore.IsZero() {
		opts.NotBefore = time.Now().Add(-time.Hour)
	}
	if opts.NotAfter.IsZero() {
		opts.NotAfter = time.Now().Add(365 * 24 * time.Hour)
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("秘密鍵の生成に失敗しました: %v", err)
	}

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "xrserve test"},
		NotBefore:             opts.NotBefore,
		NotAfter:              opts.NotAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
	}
	if opts.ServerOnly {
		template.KeyUsage = x509.KeyUsageDigitalSignature
		template.IsCA = false
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("証明書の生成に失敗しました: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("秘密鍵の変換に失敗しました: %v", err)
	}

	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	writePEM(t, certFile, "CERTIFICATE", der)
	writePEM(t, keyFile, "EC PRIVATE KEY", keyDER)
	return certFile, keyFile
}

func writePEM(t testing.TB, name, blockType string, der []byte) {
	t.Helper()
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if err := os.WriteFile(name, data, 0o600); err != nil {
		t.Fatalf("%s の書き込みに失敗しました: %v", name, err)
	}
}
