package repository

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/godilite/caseops/internal/repository/models"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const primaryEncoding = "utf-8"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var fallbackEncodings = map[string]encoding.Encoding{
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
}

// LookupEncoding resolves a fallback encoding by name.
func LookupEncoding(name string) (encoding.Encoding, error) {
	enc, ok := fallbackEncodings[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unsupported fallback encoding %q", name)
	}
	return enc, nil
}

// CSVCaseSource loads cases from a delimited file on disk.
type CSVCaseSource struct {
	path         string
	fallback     encoding.Encoding
	fallbackName string
}

type CSVOption func(*CSVCaseSource)

// WithFallbackEncoding sets the encoding tried when the file is not valid UTF-8.
func WithFallbackEncoding(name string) CSVOption {
	return func(s *CSVCaseSource) {
		if enc, err := LookupEncoding(name); err == nil {
			s.fallback = enc
			s.fallbackName = strings.ToLower(name)
		}
	}
}

// NewCSVCaseSource reads path as UTF-8, falling back to ISO-8859-1 unless an
// option says otherwise.
func NewCSVCaseSource(path string, opts ...CSVOption) *CSVCaseSource {
	s := &CSVCaseSource{
		path:         path,
		fallback:     charmap.ISO8859_1,
		fallbackName: "latin1",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CSVCaseSource) Name() string {
	return "csv:" + s.path
}

// Identity is the path plus the modification signature of the file.
func (s *CSVCaseSource) Identity(ctx context.Context) (string, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Sprintf("csv:%s:missing", s.path), nil
		}
		return "", fmt.Errorf("stat %s: %w", s.path, err)
	}
	return fmt.Sprintf("csv:%s:%d:%d", s.path, info.Size(), info.ModTime().UnixNano()), nil
}

// Load reads and parses the file. An absent file yields a Missing dataset, not an error.
func (s *CSVCaseSource) Load(ctx context.Context) (*models.Dataset, error) {
	identity, err := s.Identity(ctx)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &models.Dataset{Source: identity, Header: models.CanonicalHeader, Missing: true}, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnreadableSource, s.path, err)
	}

	ds, err := parseCSV(data, s.fallback, s.fallbackName)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.path, err)
	}
	ds.Source = identity
	return ds, nil
}

// ParseCSV decodes raw bytes (UTF-8, falling back to latin1) into a dataset.
func ParseCSV(data []byte) (*models.Dataset, error) {
	return parseCSV(data, charmap.ISO8859_1, "latin1")
}

func parseCSV(data []byte, fallback encoding.Encoding, fallbackName string) (*models.Dataset, error) {
	rows, enc, err := decodeRows(data, fallback, fallbackName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &models.Dataset{Header: models.CanonicalHeader, Stats: models.LoadStats{Encoding: enc}}, nil
	}

	ds, err := buildDataset(rows[0], rows[1:])
	if err != nil {
		return nil, err
	}
	ds.Stats.Encoding = enc
	return ds, nil
}

func decodeRows(data []byte, fallback encoding.Encoding, fallbackName string) ([][]string, string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var primaryErr error
	if utf8.Valid(data) {
		rows, err := readRows(data, false)
		if err == nil {
			return rows, primaryEncoding, nil
		}
		primaryErr = err
	} else {
		primaryErr = errors.New("invalid utf-8 byte sequence")
	}

	if fallback == nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrUnreadableSource, primaryEncoding, primaryErr)
	}

	decoded, err := fallback.NewDecoder().Bytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrUnreadableSource,
			errors.Join(fmt.Errorf("%s: %v", primaryEncoding, primaryErr), fmt.Errorf("%s: %v", fallbackName, err)))
	}
	rows, err := readRows(decoded, true)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrUnreadableSource,
			errors.Join(fmt.Errorf("%s: %v", primaryEncoding, primaryErr), fmt.Errorf("%s: %v", fallbackName, err)))
	}
	return rows, fallbackName, nil
}

func readRows(data []byte, lazy bool) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	r.LazyQuotes = lazy
	return r.ReadAll()
}

func buildDataset(header []string, rows [][]string) (*models.Dataset, error) {
	sc, err := resolveSchema(header)
	if err != nil {
		return nil, err
	}

	ds := &models.Dataset{
		Header:  append([]string(nil), header...),
		Records: make([]models.CaseRecord, 0, len(rows)),
	}
	for _, row := range rows {
		if blankRow(row) {
			continue
		}
		ds.Records = append(ds.Records, sc.record(row, &ds.Stats))
		ds.Stats.Rows++
	}
	return ds, nil
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (s *schema) record(row []string, stats *models.LoadStats) models.CaseRecord {
	coerced := func(bad bool, counter *int) {
		if bad {
			*counter++
		}
	}

	rec := models.CaseRecord{
		Technology:   s.field(row, models.ColumnTechnology),
		Status:       s.field(row, models.ColumnStatus),
		Priority:     s.field(row, models.ColumnPriority),
		Owner:        s.field(row, models.ColumnCaseOwner),
		ContractType: s.field(row, models.ColumnContractType),
	}

	var bad bool
	rec.OpenedAt, bad = parseDate(s.field(row, models.ColumnOpenedDate))
	coerced(bad, &stats.CoercedDates)
	rec.ClosedAt, bad = parseDate(s.field(row, models.ColumnClosedDate))
	coerced(bad, &stats.CoercedDates)

	rec.DaysOpen, bad = parseDuration(s.field(row, models.ColumnDaysOpen))
	coerced(bad, &stats.CoercedNumbers)
	rec.InitialResponse, bad = parseDuration(s.field(row, models.ColumnInitialResponse))
	coerced(bad, &stats.CoercedNumbers)
	rec.FinalResolution, bad = parseDuration(s.field(row, models.ColumnFinalResolution))
	coerced(bad, &stats.CoercedNumbers)
	rec.RMACount, bad = parseCount(s.field(row, models.ColumnRMACount))
	coerced(bad, &stats.CoercedNumbers)

	if !rec.OpenedAt.IsZero() && !rec.ClosedAt.IsZero() && rec.ClosedAt.Before(rec.OpenedAt) {
		rec.ClosedAt = time.Time{}
		stats.InvariantViolations++
	}

	for i, col := range s.columns {
		if col != "" || i >= len(row) {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		rec.Extra[s.header[i]] = row[i]
	}
	return rec
}
