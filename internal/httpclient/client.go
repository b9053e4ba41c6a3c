package httpclient

import (
	"net"
	"net/http"
	"time"
)

// minIdlePerHost is the smallest idle pool kept per host regardless of concurrency.
const minIdlePerHost = 10

// PoolSize returns the idle connection pool size for the given number of workers.
func PoolSize(concurrency int) int {
	size := concurrency * 2
	if size < minIdlePerHost {
		size = minIdlePerHost
	}
	return size
}

// NewClient returns an HTTP client safe for concurrent use by all workers.
// Every request is bounded by timeout.
func NewClient(concurrency int, timeout time.Duration) *http.Client {
	if timeout < 0 {
		timeout = 0
	}
	pool := PoolSize(concurrency)

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          pool,
		MaxIdleConnsPerHost:   pool,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
