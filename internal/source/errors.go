package source

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// AcquisitionError wraps every failure to read a source: a missing file, an
// unreadable workbook, an unreachable host or a non-2xx response.
type AcquisitionError struct {
	Source string
	Err    error
}

func (e *AcquisitionError) Error() string {
	if e == nil {
		return "acquisition failed"
	}
	if e.Source != "" {
		return fmt.Sprintf("load %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("load: %v", e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// StatusError is a non-2xx HTTP response from a URL source.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	body = truncate(body, 200)
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, body)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

func wrap(src string, err error) error {
	if err == nil {
		return nil
	}
	return &AcquisitionError{Source: src, Err: err}
}
