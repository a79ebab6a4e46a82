package validation

import (
	"errors"
	"fmt"
	"io"
)

// MaxUpstreamPayloadSize bounds the directory response body read into memory
const MaxUpstreamPayloadSize int64 = 32 << 20

// ErrPayloadTooLarge is returned when a payload is over its size limit
var ErrPayloadTooLarge = errors.New("payload too large")

// ValidatePayloadSize validates the size of incoming payloads
func ValidatePayloadSize(payload []byte, maxSize int64) error {
	if payload == nil {
		return nil
	}

	if int64(len(payload)) > maxSize {
		return fmt.Errorf("%w: size %d exceeds maximum allowed size of %d bytes", ErrPayloadTooLarge, len(payload), maxSize)
	}

	return nil
}

// ReadLimited reads r completely, failing once more than maxSize bytes arrive.
// One extra byte is read so an oversized body is detected without buffering all of it.
func ReadLimited(r io.Reader, maxSize int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, err
	}

	if err := ValidatePayloadSize(data, maxSize); err != nil {
		return nil, err
	}

	return data, nil
}

// TruncateString shortens s to at most maxRunes characters, marking the cut with an ellipsis
func TruncateString(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes == 1 {
		return "…"
	}
	return string(runes[:maxRunes-1]) + "…"
}
