package testutil

import (
	"bytes"
	"io"
)

// readAll drains an upload body, tolerating a nil reader.
func readAll(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	return io.ReadAll(r)
}

// newBodyReader wraps a byte slice as the ReadCloser a GetObject response carries.
func newBodyReader(body []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(body))
}
