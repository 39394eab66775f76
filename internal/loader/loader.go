// Package loader reads the paper metadata table from a compressed CSV file
// into typed records.
package loader

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/klauspost/compress/gzip"

	"github.com/matsen/paperdash/internal/paper"
)

// Column names read from the header row.
const (
	ColPublishTime = "publish_time"
	ColJournal     = "journal"
	ColTitle       = "title"
	ColCordUID     = "cord_uid"
	ColDOI         = "doi"
	ColSource      = "source_x"
)

// RequiredColumns must all be present in the header.
var RequiredColumns = []string{ColPublishTime, ColJournal, ColTitle}

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// ctxCheckInterval is how many rows are read between context checks.
const ctxCheckInterval = 1000

// Table is the loaded working set. It is read-only once returned.
type Table struct {
	Source   Source         `json:"source"`
	Records  []paper.Record `json:"-"`
	Rows     int            `json:"rows"`    // data rows read from the file
	Dropped  int            `json:"dropped"` // rows with an unparseable publish_time
	LoadedAt time.Time      `json:"loaded_at"`
}

// Len returns the number of retained records.
func (t *Table) Len() int {
	return len(t.Records)
}

// Load reads the table at path.
func Load(ctx context.Context, path string) (*Table, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	return LoadSource(ctx, Source{Path: abs})
}

// LoadSource reads the table at src.Path. The file is hashed in the same
// pass that parses it, so the returned table's Source describes the bytes
// actually parsed; it differs from src when the file changed after src
// was identified.
func LoadSource(ctx context.Context, src Source) (*Table, error) {
	f, info, err := openRegular(src.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h, err := newHash()
	if err != nil {
		return nil, err
	}
	tee := io.TeeReader(f, h)

	records, rows, dropped, err := Read(ctx, tee)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", src.Path, err)
	}
	// Hash whatever the CSV reader left behind, e.g. bytes after the gzip stream.
	if _, err := io.Copy(io.Discard, tee); err != nil {
		return nil, fmt.Errorf("hashing %s: %w", src.Path, err)
	}

	return &Table{
		Source: Source{
			Path:    src.Path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Hash:    hex.EncodeToString(h.Sum(nil)),
		},
		Records:  records,
		Rows:     rows,
		Dropped:  dropped,
		LoadedAt: time.Now(),
	}, nil
}

// Read decodes CSV rows from r, transparently gunzipping when the input
// starts with the gzip magic bytes. Rows whose publish_time cannot be
// parsed are skipped and counted in dropped.
func Read(ctx context.Context, r io.Reader) (records []paper.Record, rows, dropped int, err error) {
	in, closer, err := decompress(r)
	if err != nil {
		return nil, 0, 0, err
	}
	if closer != nil {
		defer closer.Close()
	}

	cr := csv.NewReader(in)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, 0, 0, fmt.Errorf("%w: empty file has no header", ErrMissingColumn)
	}
	if err != nil {
		return nil, 0, 0, fmt.Errorf("reading header: %w", err)
	}
	cols, err := indexColumns(header)
	if err != nil {
		return nil, 0, 0, err
	}

	records = []paper.Record{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, rows, dropped, fmt.Errorf("reading row %d: %w", rows+1, err)
		}
		rows++
		if rows%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, rows, dropped, err
			}
		}

		published, ok := ParsePublishTime(cols.get(row, ColPublishTime))
		if !ok {
			dropped++
			continue
		}
		records = append(records, paper.Record{
			CordUID:     cols.get(row, ColCordUID),
			DOI:         cols.get(row, ColDOI),
			Source:      cols.get(row, ColSource),
			Title:       optional(cols.get(row, ColTitle)),
			Journal:     optional(cols.get(row, ColJournal)),
			PublishTime: published,
		})
	}

	return records, rows, dropped, nil
}

// decompress wraps r in a gzip reader when it carries the gzip magic bytes.
func decompress(r io.Reader) (io.Reader, io.Closer, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, nil, fmt.Errorf("peeking input: %w", err)
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		return zr, zr, nil
	}
	return br, nil, nil
}

// columns maps header names to field positions.
type columns map[string]int

func indexColumns(header []string) (columns, error) {
	cols := make(columns, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

// get returns a copy of the named field of row, or "" for absent columns
// and short rows. Copying keeps a record from pinning the whole CSV line.
func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.Clone(row[i])
}

// optional maps an empty cell to a missing value.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return paper.String(s)
}

// publishLayouts are PMC-style dates that dateparse does not accept.
var publishLayouts = []string{"2006 Jan 2", "2006 Jan", "Jan 2006", "Jan 2 2006"}

// maxDigits bounds all-digit values; longer runs are epoch timestamps,
// not dates.
const maxDigits = 8

// ParsePublishTime parses the many date shapes found in publish_time
// ("2020-03-15", "2020", "2020 Mar 15", "Mar 2020", ...) as UTC.
func ParsePublishTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if len(s) > maxDigits && allDigits(s) {
		return time.Time{}, false
	}
	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return t.UTC(), true
	}
	for _, layout := range publishLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
