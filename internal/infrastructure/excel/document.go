package excel

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"github.com/yourusername/quote-bot/internal/domain/constants"
	"github.com/yourusername/quote-bot/internal/domain/entity"
)

const (
	quoteSheet   = "Cotizacion"
	catalogSheet = "Catalogo"
	moneyFormat  = "#,##0.00"
)

// Renderer kotirovka va katalog xlsx hujjatlarini yaratadi
type Renderer struct {
	location *time.Location
}

// NewRenderer nil location means time.Local.
func NewRenderer(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{location: loc}
}

// QuoteDocument builds the quote sheet sent after checkout.
func (r *Renderer) QuoteDocument(quote *entity.Quote) (entity.Document, error) {
	if quote == nil {
		return entity.Document{}, fmt.Errorf("quote is nil")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), quoteSheet); err != nil {
		return entity.Document{}, err
	}

	created := quote.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	header := [][]interface{}{
		{fmt.Sprintf("Cotización N° %d", quote.ID)},
		{"Fecha", created.In(r.location).Format("02/01/2006 15:04")},
		{"Cliente", quote.ClientName},
		{"DNI", quote.ClientDNI},
		{"Dirección", quote.ClientAddress},
		{"Teléfono", quote.ClientPhone},
		{},
		{"Producto", "Cantidad", "Precio unitario", "Subtotal"},
	}
	if err := writeRows(f, quoteSheet, 1, header); err != nil {
		return entity.Document{}, err
	}

	row := len(header) + 1
	for _, item := range quote.Items {
		values := []interface{}{item.ProductName, item.Quantity, item.UnitPrice.InexactFloat64(), item.Subtotal.InexactFloat64()}
		if err := writeRows(f, quoteSheet, row, [][]interface{}{values}); err != nil {
			return entity.Document{}, err
		}
		row++
	}
	if err := writeRows(f, quoteSheet, row, [][]interface{}{{"", "", "Total", quote.Total.InexactFloat64()}}); err != nil {
		return entity.Document{}, err
	}

	if err := styleMoney(f, quoteSheet, "C", "D", len(header)+1, row); err != nil {
		return entity.Document{}, err
	}
	_ = f.SetColWidth(quoteSheet, "A", "A", 32)
	_ = f.SetColWidth(quoteSheet, "B", "D", 16)

	content, err := toBytes(f)
	if err != nil {
		return entity.Document{}, err
	}
	return entity.Document{
		Filename: fmt.Sprintf("cotizacion_%d.xlsx", quote.ID),
		Caption:  fmt.Sprintf("Cotización N° %d", quote.ID),
		MimeType: constants.XLSXMimeType,
		Content:  content,
	}, nil
}

// CatalogDocument lists the products with prices.
func (r *Renderer) CatalogDocument(products []entity.Product) (entity.Document, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), catalogSheet); err != nil {
		return entity.Document{}, err
	}
	rows := [][]interface{}{{"Producto", "Precio", "Categoría", "Alias"}}
	for _, p := range products {
		rows = append(rows, []interface{}{p.Name, p.UnitPrice().InexactFloat64(), p.Category, joinAliases(p.Aliases)})
	}
	if err := writeRows(f, catalogSheet, 1, rows); err != nil {
		return entity.Document{}, err
	}
	if len(products) > 0 {
		if err := styleMoney(f, catalogSheet, "B", "B", 2, len(rows)); err != nil {
			return entity.Document{}, err
		}
	}
	_ = f.SetColWidth(catalogSheet, "A", "A", 32)
	_ = f.SetColWidth(catalogSheet, "C", "D", 24)

	content, err := toBytes(f)
	if err != nil {
		return entity.Document{}, err
	}
	return entity.Document{
		Filename: "catalogo.xlsx",
		Caption:  "Catálogo de productos",
		MimeType: constants.XLSXMimeType,
		Content:  content,
	}, nil
}

func writeRows(f *excelize.File, sheet string, startRow int, rows [][]interface{}) error {
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, startRow+i)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func styleMoney(f *excelize.File, sheet, fromCol, toCol string, fromRow, toRow int) error {
	format := moneyFormat
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, fmt.Sprintf("%s%d", fromCol, fromRow), fmt.Sprintf("%s%d", toCol, toRow), style)
}

func toBytes(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
