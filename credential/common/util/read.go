package util

import (
	"io"

	"github.com/pkg/errors"
)

// MaxResponseSize bounds HTTP bodies read for remote contexts and status list credentials.
const MaxResponseSize = 4 << 20

// ReadLimited reads r to the end, failing with ErrTooLarge once more than limit bytes arrive.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errors.Wrapf(ErrTooLarge, "more than %d bytes", limit)
	}
	return data, nil
}
