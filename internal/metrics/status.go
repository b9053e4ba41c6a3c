package metrics

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/torosent/jolt/internal/runner"
)

// FailureBucket is the number of failed requests sharing one cause.
type FailureBucket struct {
	Cause string `json:"cause" yaml:"cause"`
	Count int64  `json:"count" yaml:"count"`
}

// FailureTracker counts failed requests by cause. It implements
// runner.FailureLogger and is safe for concurrent use.
type FailureTracker struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewFailureTracker() *FailureTracker {
	return &FailureTracker{counts: make(map[string]int64)}
}

func (t *FailureTracker) LogFailure(err error) {
	cause := FailureCause(err)
	t.mu.Lock()
	t.counts[cause]++
	t.mu.Unlock()
}

// Buckets returns the causes sorted by descending count, then by name.
func (t *FailureTracker) Buckets() []FailureBucket {
	t.mu.Lock()
	defer t.mu.Unlock()
	return flattenBuckets(t.counts)
}

func flattenBuckets(counts map[string]int64) []FailureBucket {
	if len(counts) == 0 {
		return nil
	}
	rows := make([]FailureBucket, 0, len(counts))
	for cause, count := range counts {
		rows = append(rows, FailureBucket{Cause: cause, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return rows[i].Cause < rows[j].Cause
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}

// FailureCause labels a failed request: "HTTP <code>" for error responses,
// "Timeout" for deadline errors and a transport category otherwise.
func FailureCause(err error) string {
	if err == nil {
		return "Unknown error"
	}

	var (
		httpErr *runner.HTTPError
		netErr  net.Error
		dnsErr  *net.DNSError
		certErr *tls.CertificateVerificationError
		authErr x509.UnknownAuthorityError
		hostErr x509.HostnameError
		recErr  tls.RecordHeaderError
		opErr   *net.OpError
	)
	switch {
	case errors.As(err, &httpErr):
		return "HTTP " + strconv.Itoa(httpErr.StatusCode)
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return "Timeout"
	case errors.Is(err, context.Canceled):
		return "Canceled"
	case errors.As(err, &dnsErr):
		return "DNS lookup error"
	case errors.As(err, &certErr), errors.As(err, &authErr), errors.As(err, &hostErr):
		return "TLS certificate error"
	case errors.As(err, &recErr):
		return "TLS handshake error"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "Connection refused"
	case errors.Is(err, syscall.ECONNRESET):
		return "Connection reset"
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return "Connection closed"
	case errors.As(err, &opErr):
		return "Connection error"
	}

	// Client errors wrap the real cause in *url.Error.
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	switch name := fmt.Sprintf("%T", err); name {
	case "*errors.errorString", "*fmt.wrapError", "*fmt.wrapErrors":
		return "Request error"
	default:
		return "Request error (" + strings.TrimPrefix(name, "*") + ")"
	}
}
