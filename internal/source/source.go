// Package source acquires raw speed data from files, workbooks, HTTP URLs or
// the embedded sample, and hands it to the dataset parser.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
	"github.com/xuri/excelize/v2"
)

// DefaultTimeout bounds a URL fetch when the caller does not set one.
const DefaultTimeout = 30 * time.Second

// maxBody caps how much of a remote response is read.
const maxBody = 32 << 20

// ErrBodyTooLarge is returned when a URL response exceeds its size cap.
var ErrBodyTooLarge = errors.New("response body too large")

// Source is one place records can be loaded from.
type Source interface {
	Name() string
	Load(ctx context.Context, opt dataset.Options) (dataset.Result, error)
}

// Resolve picks a Source for a CLI argument: "sample", an http(s) URL, an
// .xlsx workbook, or any other path read as delimited text.
func Resolve(arg string, timeout time.Duration) Source {
	arg = strings.TrimSpace(arg)
	lower := strings.ToLower(arg)
	switch {
	case arg == "" || lower == dataset.SampleName:
		return Sample{}
	case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
		return URL{Address: arg, Timeout: timeout}
	case strings.HasSuffix(lower, ".xlsx"):
		return XLSX{Path: arg}
	default:
		return File{Path: arg}
	}
}

// Sample is the embedded dataset.
type Sample struct{}

func (Sample) Name() string { return dataset.SampleName }

func (Sample) Load(ctx context.Context, opt dataset.Options) (dataset.Result, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Result{}, wrap(dataset.SampleName, err)
	}
	return dataset.Parse(dataset.SampleCSV(), opt), nil
}

// File is a delimited text file on disk.
type File struct{ Path string }

func (f File) Name() string { return filepath.Base(f.Path) }

func (f File) Load(ctx context.Context, opt dataset.Options) (dataset.Result, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Result{}, wrap(f.Path, err)
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return dataset.Result{}, wrap(f.Path, fmt.Errorf("read file: %w", err))
	}
	return dataset.Parse(string(b), opt), nil
}

// XLSX is an Excel workbook. Sheet selects a sheet by name; empty means the
// first sheet.
type XLSX struct {
	Path  string
	Sheet string
}

func (x XLSX) Name() string {
	if x.Sheet != "" {
		return fmt.Sprintf("%s (sheet: %s)", filepath.Base(x.Path), x.Sheet)
	}
	return filepath.Base(x.Path)
}

func (x XLSX) Load(ctx context.Context, opt dataset.Options) (dataset.Result, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Result{}, wrap(x.Path, err)
	}
	f, err := excelize.OpenFile(x.Path)
	if err != nil {
		return dataset.Result{}, wrap(x.Path, fmt.Errorf("open xlsx: %w", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return dataset.Result{}, wrap(x.Path, fmt.Errorf("workbook has no sheets"))
	}
	sheet := sheets[0]
	if x.Sheet != "" {
		sheet = ""
		for _, s := range sheets {
			if strings.EqualFold(s, x.Sheet) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return dataset.Result{}, wrap(x.Path, fmt.Errorf("sheet '%s' not found; available sheets: %s", x.Sheet, strings.Join(sheets, ", ")))
		}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return dataset.Result{}, wrap(x.Path, fmt.Errorf("read sheet %s: %w", sheet, err))
	}
	return dataset.Collect(dataset.SliceRows(padRows(rows)), opt), nil
}

// padRows widens rows to the header width. Workbooks drop trailing empty
// cells, which would otherwise make rows with missing recent years too short.
func padRows(rows [][]string) [][]string {
	if len(rows) == 0 {
		return rows
	}
	width := len(rows[0])
	for i, r := range rows {
		if len(r) < width {
			padded := make([]string, width)
			copy(padded, r)
			rows[i] = padded
		}
	}
	return rows
}

// URL fetches delimited text over HTTP(S). Acquisition is not retried.
type URL struct {
	Address string
	Timeout time.Duration
	Client  *http.Client
	// MaxBytes caps the response body; 0 means 32 MiB.
	MaxBytes int64
}

func (u URL) Name() string { return u.Address }

func (u URL) Load(ctx context.Context, opt dataset.Options) (dataset.Result, error) {
	client := u.Client
	if client == nil {
		timeout := u.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.Address, nil)
	if err != nil {
		return dataset.Result{}, wrap(u.Address, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")
	resp, err := client.Do(req)
	if err != nil {
		return dataset.Result{}, wrap(u.Address, err)
	}
	defer resp.Body.Close()
	limit := u.MaxBytes
	if limit <= 0 {
		limit = maxBody
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return dataset.Result{}, wrap(u.Address, fmt.Errorf("read body: %w", err))
	}
	if int64(len(body)) > limit {
		return dataset.Result{}, wrap(u.Address, fmt.Errorf("%w: over %d bytes", ErrBodyTooLarge, limit))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return dataset.Result{}, wrap(u.Address, &StatusError{StatusCode: resp.StatusCode, Body: string(body)})
	}
	return dataset.Parse(string(body), opt), nil
}
