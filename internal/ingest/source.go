package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnsupportedFormat is returned by Open for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// Source yields dataset records. Next returns io.EOF after the last record.
type Source interface {
	Next() (Record, error)
	Close() error
}

// Column keys after header normalization.
const (
	colID                = "id"
	colName              = "name"
	colYearPublished     = "yearpublished"
	colMinPlayers        = "minplayers"
	colMaxPlayers        = "maxplayers"
	colPlayTime          = "playtime"
	colMinAge            = "minage"
	colUsersRated        = "usersrated"
	colRatingAverage     = "ratingaverage"
	colBGGRank           = "bggrank"
	colComplexityAverage = "complexityaverage"
	colOwnedUsers        = "ownedusers"
	colDomains           = "domains"
	colMechanics         = "mechanics"
)

// Open picks a Source by file extension: .csv (semicolon delimited) or .xlsx.
func Open(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path) //#nosec G304 -- dataset path comes from configuration
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		src, err := NewCSVSource(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		src.closer = f
		return src, nil
	case ".xlsx":
		f, err := os.Open(path) //#nosec G304 -- dataset path comes from configuration
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		defer f.Close()
		return NewXLSXSource(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// normalizeHeader maps "Year Published", "year_published" and "YearPublished" to one key.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// rowDecoder maps cells to Record fields by header position.
type rowDecoder struct {
	index map[string]int
}

func newRowDecoder(header []string) (*rowDecoder, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	for _, required := range []string{colID, colName} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("dataset header is missing the %q column", required)
		}
	}
	return &rowDecoder{index: index}, nil
}

func (d *rowDecoder) cell(row []string, key string) string {
	i, ok := d.index[key]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (d *rowDecoder) decode(line int, row []string) Record {
	return Record{
		Line:              line,
		ID:                parseInt(d.cell(row, colID)),
		Name:              d.cell(row, colName),
		YearPublished:     parseInt(d.cell(row, colYearPublished)),
		MinPlayers:        parseInt(d.cell(row, colMinPlayers)),
		MaxPlayers:        parseInt(d.cell(row, colMaxPlayers)),
		PlayTime:          parseInt(d.cell(row, colPlayTime)),
		MinAge:            parseInt(d.cell(row, colMinAge)),
		UsersRated:        parseInt(d.cell(row, colUsersRated)),
		RatingAverage:     parseFloat(d.cell(row, colRatingAverage)),
		BGGRank:           parseInt(d.cell(row, colBGGRank)),
		ComplexityAverage: parseFloat(d.cell(row, colComplexityAverage)),
		OwnedUsers:        parseInt(d.cell(row, colOwnedUsers)),
		Domains:           d.cell(row, colDomains),
		Mechanics:         d.cell(row, colMechanics),
	}
}

// CSVSource reads the semicolon delimited dataset.
type CSVSource struct {
	r      *csv.Reader
	dec    *rowDecoder
	line   int
	closer io.Closer
}

// NewCSVSource reads the header row from r. A UTF-8 or UTF-16 byte order mark is honoured and stripped.
func NewCSVSource(r io.Reader) (*CSVSource, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.Comma = ';'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dataset is empty")
		}
		return nil, fmt.Errorf("read dataset header: %w", err)
	}
	dec, err := newRowDecoder(header)
	if err != nil {
		return nil, err
	}
	return &CSVSource{r: cr, dec: dec, line: 1}, nil
}

// Next returns the next record.
func (s *CSVSource) Next() (Record, error) {
	for {
		row, err := s.r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Record{}, io.EOF
			}
			return Record{}, fmt.Errorf("read dataset line %d: %w", s.line+1, err)
		}
		s.line++
		if isBlank(row) {
			continue
		}
		return s.dec.decode(s.line, row), nil
	}
}

// Close releases the underlying file, if any.
func (s *CSVSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// XLSXSource reads the first sheet of a workbook. Rows are loaded up front.
type XLSXSource struct {
	rows [][]string
	dec  *rowDecoder
	pos  int
}

// NewXLSXSource reads the workbook from r.
func NewXLSXSource(r io.Reader) (*XLSXSource, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("dataset is empty")
	}
	dec, err := newRowDecoder(rows[0])
	if err != nil {
		return nil, err
	}
	return &XLSXSource{rows: rows, dec: dec, pos: 1}, nil
}

// Next returns the next record.
func (s *XLSXSource) Next() (Record, error) {
	for s.pos < len(s.rows) {
		row := s.rows[s.pos]
		s.pos++
		if isBlank(row) {
			continue
		}
		return s.dec.decode(s.pos, row), nil
	}
	return Record{}, io.EOF
}

// Close is a no-op; the workbook is closed after loading.
func (s *XLSXSource) Close() error { return nil }

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
