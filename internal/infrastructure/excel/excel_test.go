package excel

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/quote-bot/internal/domain/constants"
	"github.com/yourusername/quote-bot/internal/domain/entity"
)

func workbook(t *testing.T, rows [][]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, writeRows(f, f.GetSheetName(0), 1, rows))
	return f
}

func workbookBytes(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := workbook(t, rows)
	defer f.Close()
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return &buf
}

func TestParseCatalog(t *testing.T) {
	buf := workbookBytes(t, [][]interface{}{
		{"Nombre", "Alias", "Precio", "Categoría", "Stock"},
		{"Zapatos", "zapato, calzado", "45.99", "Calzado", "10"},
		{"Camisa", "", "25,50", "", ""},
		{},
		{"", "", "5", "", ""},
		{"Gorras", "gorra|cachucha", "abc", "", ""},
		{"zapatos", "", "40", "", ""},
		{"Jean", "jean", "$1.030,00", "", "x"},
		{"Chaqueta Jean", "chaqueta de jean", "80", "", ""},
	})

	res, err := ParseCatalog(buf)
	require.NoError(t, err)
	require.Len(t, res.Products, 3)

	z := res.Products[0]
	assert.Equal(t, "Zapatos", z.Name)
	assert.Equal(t, []string{"zapato", "calzado"}, z.Aliases)
	assert.Equal(t, "45.99", z.Price.StringFixed(2))
	assert.Equal(t, "Calzado", z.Category)
	require.NotNil(t, z.Stock)
	assert.Equal(t, 10, *z.Stock)

	assert.Equal(t, "25.50", res.Products[1].Price.StringFixed(2))
	assert.Nil(t, res.Products[1].Stock)
	assert.Equal(t, "Chaqueta Jean", res.Products[2].Name)

	rows := make([]int, 0, len(res.Skipped))
	for _, s := range res.Skipped {
		rows = append(rows, s.Row)
	}
	assert.Equal(t, []int{5, 6, 7, 8}, rows, "missing name, bad price, duplicate, bad stock")
}

func TestParseCatalogRequiresHeader(t *testing.T) {
	_, err := ParseCatalog(workbookBytes(t, [][]interface{}{{"Precio"}, {"10"}}))
	assert.Error(t, err)

	_, err = ParseCatalog(workbookBytes(t, [][]interface{}{{"Nombre"}, {"Camisa"}}))
	assert.Error(t, err)

	_, err = ParseCatalog(bytes.NewBufferString("not a workbook"))
	assert.Error(t, err)
}

func TestParseCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogo.xlsx")
	f := workbook(t, [][]interface{}{{"product", "price"}, {"Camisa", 25.5}})
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	res, err := ParseCatalogFile(path)
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "25.5", res.Products[0].Price.String())
}

func TestParsePrice(t *testing.T) {
	tests := map[string]string{
		"45.99":     "45.99",
		"45,99":     "45.99",
		"$1.234,50": "1234.5",
		"1,234.50":  "1234.5",
		" 12 ":      "12",
	}
	for in, want := range tests {
		got, err := parsePrice(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.String(), in)
	}
	_, err := parsePrice("")
	assert.Error(t, err)
}

func TestQuoteDocument(t *testing.T) {
	quote := &entity.Quote{
		ID:            7,
		ClientPhone:   "+584121234567",
		ClientName:    "Juan Perez",
		ClientDNI:     "V12345678",
		ClientAddress: "Av. Bolivar 12",
		Total:         decimal.RequireFromString("117.48"),
		CreatedAt:     time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		Items: []entity.QuoteItem{
			{ProductName: "Zapatos", Quantity: 2, UnitPrice: decimal.RequireFromString("45.99"), Subtotal: decimal.RequireFromString("91.98")},
			{ProductName: "Camisa", Quantity: 1, UnitPrice: decimal.RequireFromString("25.50"), Subtotal: decimal.RequireFromString("25.50")},
		},
	}

	doc, err := NewRenderer(time.UTC).QuoteDocument(quote)
	require.NoError(t, err)
	assert.Equal(t, "cotizacion_7.xlsx", doc.Filename)
	assert.Equal(t, constants.XLSXMimeType, doc.MimeType)

	f, err := excelize.OpenReader(bytes.NewReader(doc.Content))
	require.NoError(t, err)
	defer f.Close()

	title, _ := f.GetCellValue(quoteSheet, "A1")
	assert.Equal(t, "Cotización N° 7", title)
	date, _ := f.GetCellValue(quoteSheet, "B2")
	assert.Equal(t, "10/03/2025 12:00", date)
	name, _ := f.GetCellValue(quoteSheet, "B3")
	assert.Equal(t, "Juan Perez", name)

	first, _ := f.GetCellValue(quoteSheet, "A9")
	assert.Equal(t, "Zapatos", first)
	qty, _ := f.GetCellValue(quoteSheet, "B9")
	assert.Equal(t, "2", qty)
	totalLabel, _ := f.GetCellValue(quoteSheet, "C11")
	assert.Equal(t, "Total", totalLabel)
	total, _ := f.GetCellValue(quoteSheet, "D11")
	assert.Equal(t, "117.48", total)

	_, err = NewRenderer(nil).QuoteDocument(nil)
	assert.Error(t, err)
}

func TestCatalogDocument(t *testing.T) {
	doc, err := NewRenderer(nil).CatalogDocument([]entity.Product{
		{Name: "Zapatos", Aliases: []string{"zapato", "calzado"}, Price: decimal.RequireFromString("45.99")},
		{Name: "Gorras", Price: decimal.RequireFromString("12")},
	})
	require.NoError(t, err)
	assert.Equal(t, "catalogo.xlsx", doc.Filename)

	f, err := excelize.OpenReader(bytes.NewReader(doc.Content))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(catalogSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Zapatos", rows[1][0])
	assert.Equal(t, "zapato, calzado", rows[1][3])
	assert.Equal(t, "Gorras", rows[2][0])

	empty, err := NewRenderer(nil).CatalogDocument(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, empty.Content)
}
