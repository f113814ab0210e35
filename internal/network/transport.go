package network

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	kerrors "github.com/PolarWolf314/refuge/internal/errors"

	"golang.org/x/net/proxy"
)

type TransportKind int

const (
	TransportDirect TransportKind = iota
	TransportFronted
	TransportSOCKS5
)

func (k TransportKind) String() string {
	switch k {
	case TransportDirect:
		return "direct"
	case TransportFronted:
		return "fronted"
	case TransportSOCKS5:
		return "socks5"
	default:
		return "unknown"
	}
}

// TransportConfig describes how to build the HTTP client for a Resolution.
type TransportConfig struct {
	Kind    TransportKind
	Timeout time.Duration

	// FrontDomain is set for TransportFronted.
	FrontDomain string
	// ProxyAddr is set for TransportSOCKS5.
	ProxyAddr string
}

// HTTPClient builds a client that sends requests the way c describes.
// Environment proxy variables are ignored.
func (c TransportConfig) HTTPClient() (*http.Client, error) {
	base := &http.Transport{
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	var rt http.RoundTripper = base

	switch c.Kind {
	case TransportDirect:
		base.DialContext = (&net.Dialer{Timeout: 10 * time.Second}).DialContext

	case TransportFronted:
		if c.FrontDomain == "" {
			return nil, fmt.Errorf("fronted transport requires a front domain")
		}
		base.DialContext = (&net.Dialer{Timeout: 10 * time.Second}).DialContext
		rt = &frontingTransport{front: c.FrontDomain, base: base}

	case TransportSOCKS5:
		dialer, err := proxy.SOCKS5("tcp", c.ProxyAddr, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %v: %w", err, kerrors.ErrProxyUnavailable)
		}
		contextDialer, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("SOCKS5 dialer does not support contexts")
		}
		base.DialContext = contextDialer.DialContext
		// Onion circuits take longer to build.
		base.TLSHandshakeTimeout = 20 * time.Second
		base.ResponseHeaderTimeout = 30 * time.Second
		base.MaxIdleConnsPerHost = 2

	default:
		return nil, fmt.Errorf("unknown transport kind %d", int(c.Kind))
	}

	return &http.Client{Transport: rt, Timeout: c.Timeout}, nil
}

// frontingTransport connects to the front domain while keeping the original
// host in the Host header, so the CDN routes the request to the reflector.
type frontingTransport struct {
	front string
	base  http.RoundTripper
}

func (t *frontingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if r.Host == "" {
		r.Host = req.URL.Host
	}
	r.URL.Host = t.front
	return t.base.RoundTrip(r)
}

// dialTCP reports whether addr accepts a TCP connection within timeout.
func dialTCP(ctx context.Context, addr string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// fetchOK reports whether a GET of url completes with a status below 400
// within timeout.
func fetchOK(ctx context.Context, client *http.Client, url string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < http.StatusBadRequest
}
