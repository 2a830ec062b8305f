package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/quote-bot/internal/domain/entity"
)

// column header aliases, compared lowercased
var headerAliases = map[string]string{
	"name":       "name",
	"nombre":     "name",
	"producto":   "name",
	"product":    "name",
	"aliases":    "aliases",
	"alias":      "aliases",
	"sinonimos":  "aliases",
	"price":      "price",
	"precio":     "price",
	"category":   "category",
	"categoria":  "category",
	"categoría":  "category",
	"stock":      "stock",
	"existencia": "stock",
	"image":      "image",
	"imagen":     "image",
	"image_url":  "image",
}

// RowError qatordagi xato; the row number is 1-based as Excel shows it.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// ImportResult is what a catalog file produced.
type ImportResult struct {
	Products []entity.Product
	Skipped  []RowError
}

// ParseCatalogFile birinchi varaqdan mahsulotlarni o'qiydi
func ParseCatalogFile(path string) (*ImportResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()
	return parseCatalog(f)
}

// ParseCatalog reads an uploaded workbook.
func ParseCatalog(r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return parseCatalog(f)
}

func parseCatalog(f *excelize.File) (*ImportResult, error) {
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("catalog sheet is empty")
	}

	columns := mapHeader(rows[0])
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("catalog header has no name column")
	}
	if _, ok := columns["price"]; !ok {
		return nil, fmt.Errorf("catalog header has no price column")
	}

	res := &ImportResult{}
	seen := make(map[string]bool)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlank(row) {
			continue
		}
		p, err := productFromRow(row, columns)
		if err == nil {
			err = p.Validate()
		}
		if err == nil && seen[strings.ToLower(p.Name)] {
			err = fmt.Errorf("duplicate product %q", p.Name)
		}
		if err != nil {
			res.Skipped = append(res.Skipped, RowError{Row: rowNum, Err: err})
			continue
		}
		seen[strings.ToLower(p.Name)] = true
		res.Products = append(res.Products, p)
	}
	return res, nil
}

func mapHeader(header []string) map[string]int {
	columns := make(map[string]int)
	for idx, raw := range header {
		key, ok := headerAliases[strings.ToLower(strings.TrimSpace(raw))]
		if !ok {
			continue
		}
		if _, dup := columns[key]; !dup {
			columns[key] = idx
		}
	}
	return columns
}

func productFromRow(row []string, columns map[string]int) (entity.Product, error) {
	cell := func(key string) string {
		idx, ok := columns[key]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	p := entity.Product{
		Name:     cell("name"),
		Aliases:  splitAliases(cell("aliases")),
		Category: cell("category"),
		ImageURL: cell("image"),
	}
	price, err := parsePrice(cell("price"))
	if err != nil {
		return p, err
	}
	p.Price = price

	if raw := cell("stock"); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			return p, fmt.Errorf("stock %q: %w", raw, err)
		}
		p.Stock = &stock
	}
	return p, nil
}

// parsePrice accepts "45.99", "45,99", "$1.234,50" and "1,234.50".
func parsePrice(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("price is empty")
	}
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastDot > lastComma:
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price %q: %w", raw, err)
	}
	return d, nil
}

func splitAliases(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if alias := strings.TrimSpace(part); alias != "" {
			out = append(out, alias)
		}
	}
	return out
}

func joinAliases(aliases []string) string {
	return strings.Join(aliases, ", ")
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
