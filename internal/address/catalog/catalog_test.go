package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"

	"mxaddress/internal/address/models"
)

// =============================================================================
// Postal Catalog Test Suite
// =============================================================================
// The index is shared by every resolution, so these tests pin down row
// filtering, key canonicalization and the load-once guarantee.

type CatalogSuite struct {
	suite.Suite
	ctx context.Context
	dir string
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogSuite))
}

func (s *CatalogSuite) SetupTest() {
	s.ctx = context.Background()
	s.dir = s.T().TempDir()
}

type staticSource struct {
	rows  []Row
	err   error
	calls atomic.Int32
}

func (f *staticSource) Rows(_ context.Context, fn func(Row) error) error {
	f.calls.Add(1)
	if f.err != nil {
		return f.err
	}
	for _, r := range f.rows {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Index
// =============================================================================

func (s *CatalogSuite) TestLookup() {
	src := &staticSource{rows: []Row{
		{State: "Tamaulipas", Municipality: "Reynosa", Neighborhood: "Rodríguez", PostalCode: "88500"},
		{State: "Tamaulipas", Municipality: "Reynosa", Neighborhood: "Rodríguez", PostalCode: "88500"},
		{State: "Tamaulipas", Municipality: "Reynosa", Neighborhood: "Del Prado", PostalCode: "88560.0"},
		{State: "Tamaulipas", Municipality: "Reynosa", Neighborhood: "", PostalCode: "88570"},
		{State: "Tamaulipas", Municipality: "Reynosa", Neighborhood: "Sin CP", PostalCode: "n/a"},
		{State: "Tamaulipas", Municipality: "Reynosa", Neighborhood: "Too Long", PostalCode: "885001"},
		{State: "Distrito Federal", Municipality: "Cuauhtémoc", Neighborhood: "Centro", PostalCode: "6000"},
		{State: "Veracruz de Ignacio de la Llave", Municipality: "Xalapa", Neighborhood: "Centro", PostalCode: "91000"},
	}}
	idx := New(src)
	s.Require().NoError(idx.Load(s.ctx))

	s.Run("entries are upper cased padded and deduplicated", func() {
		got := idx.Lookup("TAMAULIPAS", "REYNOSA")
		s.Equal([]models.PostalEntry{
			{PostalCode: "88500", Neighborhood: "RODRÍGUEZ"},
			{PostalCode: "88560", Neighborhood: "DEL PRADO"},
		}, got)
	})

	s.Run("state aliases and accents resolve to the same key", func() {
		got := idx.Lookup("CDMX", "CUAUHTEMOC")
		s.Equal([]models.PostalEntry{{PostalCode: "06000", Neighborhood: "CENTRO"}}, got)

		got = idx.Lookup("veracruz", " xalapa ")
		s.Len(got, 1)
	})

	s.Run("unknown key is empty", func() {
		s.Empty(idx.Lookup("TAMAULIPAS", "ATLANTIS"))
	})

	s.Run("callers cannot mutate the index", func() {
		got := idx.Lookup("TAMAULIPAS", "REYNOSA")
		got[0].PostalCode = "00000"
		s.Equal("88500", idx.Lookup("TAMAULIPAS", "REYNOSA")[0].PostalCode)
	})

	s.Run("stats count keys entries and skipped rows", func() {
		st := idx.Stats()
		s.True(st.Loaded)
		s.Equal(3, st.Keys)
		s.Equal(4, st.Entries)
		s.Equal(3, st.Skipped)
	})
}

func (s *CatalogSuite) TestLoad() {
	s.Run("lookup before load is empty", func() {
		idx := New(&staticSource{rows: []Row{{State: "A", Municipality: "B", Neighborhood: "C", PostalCode: "1"}}})
		s.Empty(idx.Lookup("A", "B"))
		s.False(idx.Loaded())
	})

	s.Run("concurrent loads parse once", func() {
		src := &staticSource{rows: []Row{{State: "A", Municipality: "B", Neighborhood: "C", PostalCode: "1"}}}
		idx := New(src)

		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.NoError(idx.Load(s.ctx))
			}()
		}
		wg.Wait()

		s.Equal(int32(1), src.calls.Load())
		s.Len(idx.Lookup("A", "B"), 1)
	})

	s.Run("failed load stays unloaded and retries", func() {
		src := &staticSource{err: errors.New("disk gone")}
		idx := New(src)

		s.Error(idx.Load(s.ctx))
		s.False(idx.Loaded())

		src.err = nil
		src.rows = []Row{{State: "A", Municipality: "B", Neighborhood: "C", PostalCode: "1"}}
		s.NoError(idx.Load(s.ctx))
		s.Equal(int32(2), src.calls.Load())
	})

	s.Run("missing file fails", func() {
		idx := New(SourceForPath(filepath.Join(s.dir, "missing.txt"), EncodingLatin1))
		s.Error(idx.Load(s.ctx))
	})
}

// =============================================================================
// Sources
// =============================================================================

func (s *CatalogSuite) TestCSVSource() {
	s.Run("official latin-1 pipe export with notice line", func() {
		// "Querétaro" and "Centro Histórico" encoded as ISO-8859-1.
		content := []byte("El Catalogo Nacional de Codigos Postales, es elaborado por Correos de Mexico\n" +
			"d_codigo|d_asenta|d_tipo_asenta|D_mnpio|d_estado|d_ciudad\n" +
			"76000|Centro Hist\xf3rico|Colonia|Quer\xe9taro|Quer\xe9taro|Santiago de Quer\xe9taro\n" +
			"76010|Las Campanas|Colonia|Quer\xe9taro|Quer\xe9taro|Santiago de Quer\xe9taro\n")
		path := filepath.Join(s.dir, "CPdescarga.txt")
		s.Require().NoError(os.WriteFile(path, content, 0o600))

		idx := New(SourceForPath(path, EncodingLatin1))
		s.Require().NoError(idx.Load(s.ctx))

		got := idx.Lookup("QUERETARO", "QUERETARO")
		s.Equal([]models.PostalEntry{
			{PostalCode: "76000", Neighborhood: "CENTRO HISTÓRICO"},
			{PostalCode: "76010", Neighborhood: "LAS CAMPANAS"},
		}, got)
	})

	s.Run("utf-8 comma separated file", func() {
		content := "d_estado,D_mnpio,d_asenta,d_codigo\n" +
			"Nuevo León,Monterrey,Obispado,64060\n" +
			"\"Nuevo León\",\"Monterrey\",\"Mitras Centro\",\"64460\"\n"
		path := filepath.Join(s.dir, "sepomex.csv")
		s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

		idx := New(SourceForPath(path, EncodingUTF8))
		s.Require().NoError(idx.Load(s.ctx))
		s.Len(idx.Lookup("NL", "MONTERREY"), 2)
	})

	s.Run("file without header fails", func() {
		path := filepath.Join(s.dir, "empty.csv")
		s.Require().NoError(os.WriteFile(path, []byte("nothing here\n"), 0o600))

		idx := New(SourceForPath(path, EncodingUTF8))
		s.Error(idx.Load(s.ctx))
	})
}

func (s *CatalogSuite) TestXLSXSource() {
	f := excelize.NewFile()
	defer f.Close()

	s.Require().NoError(f.SetSheetName("Sheet1", "Tamaulipas"))
	s.Require().NoError(f.SetSheetRow("Tamaulipas", "A1", &[]any{"d_codigo", "d_asenta", "D_mnpio", "d_estado"}))
	s.Require().NoError(f.SetSheetRow("Tamaulipas", "A2", &[]any{"88500", "Rodriguez", "Reynosa", "Tamaulipas"}))
	_, err := f.NewSheet("Yucatán")
	s.Require().NoError(err)
	s.Require().NoError(f.SetSheetRow("Yucatán", "A1", &[]any{"d_codigo", "d_asenta", "D_mnpio", "d_estado"}))
	s.Require().NoError(f.SetSheetRow("Yucatán", "A2", &[]any{97000, "Centro", "Mérida", "Yucatán"}))
	_, err = f.NewSheet("Nota")
	s.Require().NoError(err)
	s.Require().NoError(f.SetSheetRow("Nota", "A1", &[]any{"Catalogo de codigos postales"}))

	path := filepath.Join(s.dir, "CPdescarga.xlsx")
	s.Require().NoError(f.SaveAs(path))

	idx := New(SourceForPath(path, EncodingLatin1))
	s.Require().NoError(idx.Load(s.ctx))

	s.Equal([]models.PostalEntry{{PostalCode: "88500", Neighborhood: "RODRIGUEZ"}}, idx.Lookup("TAMAULIPAS", "REYNOSA"))
	s.Equal([]models.PostalEntry{{PostalCode: "97000", Neighborhood: "CENTRO"}}, idx.Lookup("YUCATAN", "MERIDA"))
}

func (s *CatalogSuite) TestParseEncoding() {
	enc, err := ParseEncoding("ISO-8859-1")
	s.NoError(err)
	s.Equal(EncodingLatin1, enc)

	enc, err = ParseEncoding("UTF-8")
	s.NoError(err)
	s.Equal(EncodingUTF8, enc)

	_, err = ParseEncoding("ebcdic")
	s.Error(err)
}
