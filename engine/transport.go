package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	tls "github.com/refraction-networking/utls"
)

// buildChromeH1Spec returns Chrome's ClientHello with ALPN limited to
// http/1.1, since http.Transport cannot speak h2 over a utls connection.
// Extensions carry per-connection state, so every dial needs a fresh spec.
func buildChromeH1Spec() (*tls.ClientHelloSpec, error) {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return nil, fmt.Errorf("build chrome hello: %w", err)
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			return &spec, nil
		}
	}
	return nil, errors.New("build chrome hello: no ALPN extension")
}

// newChromeTransport returns the query strategy's transport.
func newChromeTransport() *http.Transport {
	return chromeTransport(buildChromeH1Spec)
}

// chromeTransport builds a keep-alive transport whose HTTPS handshakes
// present a spec from helloSpec. If no spec can be built the transport
// keeps Go's own TLS stack and the failure is logged.
func chromeTransport(helloSpec func() (*tls.ClientHelloSpec, error)) *http.Transport {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}

	if _, err := helloSpec(); err != nil {
		slog.Warn("chrome TLS fingerprint unavailable, using default TLS", "error", err)
		return tr
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	tr.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		raw, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}

		spec, err := helloSpec()
		if err != nil {
			raw.Close()
			return nil, fmt.Errorf("transport: %w", err)
		}
		conn := tls.UClient(raw, &tls.Config{ServerName: host}, tls.HelloCustom)
		if err := conn.ApplyPreset(spec); err != nil {
			raw.Close()
			return nil, fmt.Errorf("transport: apply hello to %s: %w", host, err)
		}
		if err := conn.HandshakeContext(ctx); err != nil {
			raw.Close()
			return nil, fmt.Errorf("transport: handshake with %s: %w", host, err)
		}
		return conn, nil
	}
	return tr
}
