package server

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"xrserve/internal/identity"
)

// bannerInfo は起動メッセージに表示する情報
type bannerInfo struct {
	Addr     net.Addr
	Host     string
	Root     string
	Identity *identity.Identity
	Now      time.Time
}

// printBanner は起動メッセージを出力する
func printBanner(w io.Writer, info bannerInfo) {
	port := portOf(info.Addr)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "============================================================")
	fmt.Fprintln(w, "  xrserve HTTPS サーバー起動中")
	fmt.Fprintln(w, "============================================================")
	fmt.Fprintln(w)

	hosts := accessHosts(info.Host)
	if len(hosts) == 0 {
		fmt.Fprintf(w, "ヘッドセットからのアクセス:  https://<このPCのIPアドレス>:%s/index.html\n", port)
	}
	for _, host := range hosts {
		fmt.Fprintf(w, "ヘッドセットからのアクセス:  https://%s/index.html\n", net.JoinHostPort(host, port))
	}
	fmt.Fprintln(w)

	if info.Identity.SelfSigned() {
		fmt.Fprintln(w, "注意: 自己署名証明書のためヘッドセットで警告が表示されます")
		fmt.Fprintln(w, "      「詳細」から「アクセスする」を選んでください")
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "証明書: %s\n", info.Identity.Validity(info.Now))
	fmt.Fprintf(w, "配信ディレクトリ: %s\n", info.Root)
	fmt.Fprintf(w, "リッスン: %s\n", info.Addr)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ctrl+C で停止します")
	fmt.Fprintln(w)
}

// accessHosts はクライアントが接続に使えるホストを返す
// 全インターフェースで待ち受ける場合はループバック以外のIPv4アドレスを列挙する
func accessHosts(bindHost string) []string {
	if bindHost != "" && bindHost != "0.0.0.0" && bindHost != "::" {
		return []string{bindHost}
	}

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}

	var hosts []string
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			hosts = append(hosts, ip4.String())
		}
	}
	return hosts
}

func portOf(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return strconv.Itoa(tcp.Port)
	}
	_, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return ""
	}
	return port
}
