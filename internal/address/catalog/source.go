package catalog

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Column names of the SEPOMEX export, matched case-insensitively.
const (
	colState        = "d_estado"
	colMunicipality = "d_mnpio"
	colNeighborhood = "d_asenta"
	colPostalCode   = "d_codigo"
)

// Encoding of a text catalog file.
type Encoding string

const (
	EncodingLatin1 Encoding = "latin1"
	EncodingUTF8   Encoding = "utf8"
)

// ParseEncoding accepts the common spellings of the supported encodings.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return EncodingLatin1, nil
	case "utf8", "utf-8":
		return EncodingUTF8, nil
	default:
		return "", fmt.Errorf("unsupported catalog encoding %q", s)
	}
}

// SourceForPath picks the source implementation from the file extension.
func SourceForPath(path string, enc Encoding) Source {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return &XLSXSource{Path: path}
	default:
		return &CSVSource{Path: path, Encoding: enc}
	}
}

// CSVSource reads the official pipe-delimited text export or a plain CSV.
// Lines before the header (the official file opens with a notice) are skipped.
type CSVSource struct {
	Path     string
	Encoding Encoding
}

func (s *CSVSource) Rows(ctx context.Context, fn func(Row) error) error {
	f, err := os.Open(s.Path)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if s.Encoding != EncodingUTF8 {
		r = charmap.ISO8859_1.NewDecoder().Reader(f)
	}
	return readDelimited(ctx, r, fn)
}

func readDelimited(ctx context.Context, r io.Reader, fn func(Row) error) error {
	br := bufio.NewReader(r)

	var header string
	for {
		line, err := br.ReadString('\n')
		if strings.Contains(strings.ToLower(line), colPostalCode) {
			header = strings.TrimRight(line, "\r\n")
			break
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("catalog header with %s not found", colPostalCode)
			}
			return fmt.Errorf("read catalog header: %w", err)
		}
	}

	delim := ','
	if strings.Count(header, "|") > strings.Count(header, ",") {
		delim = '|'
	}
	cols, err := columnIndex(strings.Split(header, string(delim)))
	if err != nil {
		return err
	}

	reader := csv.NewReader(br)
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return fmt.Errorf("read catalog row: %w", err)
		}
		if err := fn(cols.row(record)); err != nil {
			return err
		}
	}
}

// XLSXSource reads the SEPOMEX spreadsheet, which has one sheet per state.
// Sheets without the expected header are ignored.
type XLSXSource struct {
	Path string
}

func (s *XLSXSource) Rows(ctx context.Context, fn func(Row) error) error {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		if err := readSheet(ctx, f, sheet, fn); err != nil {
			return err
		}
	}
	return nil
}

func readSheet(ctx context.Context, f *excelize.File, sheet string, fn func(Row) error) error {
	rows, err := f.Rows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var cols *columns
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, err := rows.Columns()
		if err != nil {
			return fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if cols == nil {
			if c, err := columnIndex(record); err == nil {
				cols = c
			}
			continue
		}
		if err := fn(cols.row(record)); err != nil {
			return err
		}
	}
	return rows.Error()
}

type columns struct {
	state, municipality, neighborhood, postalCode int
}

func columnIndex(header []string) (*columns, error) {
	idx := map[string]int{}
	for i, h := range header {
		name := strings.ToLower(strings.Trim(strings.TrimSpace(h), "\ufeff\""))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	c := &columns{}
	for name, dst := range map[string]*int{
		colState:        &c.state,
		colMunicipality: &c.municipality,
		colNeighborhood: &c.neighborhood,
		colPostalCode:   &c.postalCode,
	} {
		i, ok := idx[name]
		if !ok {
			return nil, fmt.Errorf("catalog header is missing column %s", name)
		}
		*dst = i
	}
	return c, nil
}

func (c *columns) row(record []string) Row {
	field := func(i int) string {
		if i < len(record) {
			return record[i]
		}
		return ""
	}
	return Row{
		State:        field(c.state),
		Municipality: field(c.municipality),
		Neighborhood: field(c.neighborhood),
		PostalCode:   field(c.postalCode),
	}
}
