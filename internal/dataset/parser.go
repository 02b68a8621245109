package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
)

// SplitMode selects how a line is broken into fields.
type SplitMode int

const (
	// SplitNaive splits every line on the delimiter. Quoted fields that
	// contain the delimiter or a newline are NOT supported and get mis-parsed.
	SplitNaive SplitMode = iota
	// SplitQuoted uses encoding/csv and honors RFC 4180 quoting.
	SplitQuoted
)

// HeaderMode controls how the first row is interpreted.
type HeaderMode int

const (
	// HeaderAuto keys fields by name when the first row names the country
	// column, and otherwise reads every row positionally.
	HeaderAuto HeaderMode = iota
	// HeaderPresent always consumes the first row as a header. If it cannot
	// be keyed by name it is discarded and fields are read positionally.
	HeaderPresent
	// HeaderAbsent reads every row positionally.
	HeaderAbsent
)

// Options controls row parsing and normalization.
type Options struct {
	// Delimiter between fields. Zero means ','.
	Delimiter rune
	Split     SplitMode
	Header    HeaderMode
	Policy    MissingPolicy
}

// DefaultOptions is comma split without quoting,
// header detection, and missing readings kept as null.
func DefaultOptions() Options {
	return Options{Delimiter: ',', Split: SplitNaive, Header: HeaderAuto, Policy: NullAsMissing}
}

// ParseSplitMode accepts "naive"|"quoted".
func ParseSplitMode(s string) (SplitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "naive", "plain":
		return SplitNaive, nil
	case "quoted", "csv":
		return SplitQuoted, nil
	default:
		return SplitNaive, fmt.Errorf("unsupported split mode: %s (use naive|quoted)", s)
	}
}

// ParseHeaderMode accepts "auto"|"present"|"absent".
func ParseHeaderMode(s string) (HeaderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return HeaderAuto, nil
	case "present", "yes", "true":
		return HeaderPresent, nil
	case "absent", "none", "no", "false":
		return HeaderAbsent, nil
	default:
		return HeaderAuto, fmt.Errorf("unsupported header mode: %s (use auto|present|absent)", s)
	}
}

// ParseDelimiter maps a flag value to a delimiter rune.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "", ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	case "|":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %s", s)
	}
}

// Rows lazily yields the field vectors of text. Line endings may be "\n" or
// "\r\n"; blank lines are skipped. No row is dropped for its width here.
func Rows(text string, opt Options) iter.Seq[[]string] {
	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
	}
	if opt.Split == SplitQuoted {
		return quotedRows(text, delim)
	}
	sep := string(delim)
	return func(yield func([]string) bool) {
		for line := range strings.Lines(text) {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			if strings.TrimSpace(line) == "" {
				continue
			}
			if !yield(strings.Split(line, sep)) {
				return
			}
		}
	}
}

func quotedRows(text string, delim rune) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		r := csv.NewReader(strings.NewReader(text))
		r.Comma = delim
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		for {
			rec, err := r.Read()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				var perr *csv.ParseError
				if errors.As(err, &perr) {
					continue // skip malformed rows
				}
				return
			}
			if blank(rec) {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// SliceRows adapts already-split rows (for example from a workbook) to the
// same lazy sequence, skipping blank rows.
func SliceRows(rows [][]string) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		for _, row := range rows {
			if blank(row) {
				continue
			}
			if !yield(row) {
				return
			}
		}
	}
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
