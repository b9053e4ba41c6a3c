package httpclient

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

type BodySource interface {
	NewReader() (io.ReadCloser, error)
	ContentLength() (int64, bool)
}

// NewBodySource returns the request payload given inline or as a file path.
// It returns nil when neither is set. The file is read once so that every
// request carries an identical payload.
func NewBodySource(body, bodyFile string) (BodySource, error) {
	bodyFile = strings.TrimSpace(bodyFile)
	if body != "" && bodyFile != "" {
		return nil, errors.New("body and body file cannot both be provided")
	}

	if body != "" {
		return &inlineBodySource{data: []byte(body)}, nil
	}

	if bodyFile != "" {
		info, err := os.Stat(bodyFile)
		if err != nil {
			return nil, fmt.Errorf("body file: %w", err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("body file %q is a directory", bodyFile)
		}
		data, err := os.ReadFile(bodyFile)
		if err != nil {
			return nil, fmt.Errorf("body file: %w", err)
		}
		return &inlineBodySource{data: data}, nil
	}

	return nil, nil
}

type inlineBodySource struct {
	data []byte
}

func (s *inlineBodySource) NewReader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func (s *inlineBodySource) ContentLength() (int64, bool) {
	return int64(len(s.data)), true
}

type emptyBodySource struct{}

func (emptyBodySource) NewReader() (io.ReadCloser, error) {
	return http.NoBody, nil
}

func (emptyBodySource) ContentLength() (int64, bool) {
	return 0, true
}
