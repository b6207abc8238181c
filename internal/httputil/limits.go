package httputil

import (
	"fmt"
	"io"
)

// ReadAllWithLimit reads at most limit bytes from r and reports whether the
// input was truncated.
func ReadAllWithLimit(r io.Reader, limit int64) ([]byte, bool, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) < limit {
		return data, false, nil
	}
	// Peek one more byte to distinguish an exact-size body from truncation.
	var probe [1]byte
	n, err := r.Read(probe[:])
	if err != nil && err != io.EOF {
		return nil, false, err
	}
	return data, n > 0, nil
}

// ReadAllStrict reads the full body and errors if it exceeds limit bytes.
func ReadAllStrict(r io.Reader, limit int64) ([]byte, error) {
	data, truncated, err := ReadAllWithLimit(r, limit)
	if err != nil {
		return nil, err
	}
	if truncated {
		return nil, fmt.Errorf("response body exceeds %d byte limit", limit)
	}
	return data, nil
}
