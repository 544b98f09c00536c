package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/georgemunganga/exhibition-crm/internal/modules/contact"
)

// Columns is the fixed export column order.
var Columns = []string{
	"Name", "Company", "Email", "Phone", "BusinessType", "Priority", "Products", "Notes", "SalesPerson", "Date",
}

const photoOnly = "[Photo only - identify from image]"

// CSV renders contacts in input order under a header row. Every cell is
// quoted and embedded quotes are doubled. Output depends only on the input.
func CSV(contacts []*contact.Contact) []byte {
	var b strings.Builder
	writeRow(&b, Columns)
	for _, c := range contacts {
		writeRow(&b, row(c))
	}
	return []byte(b.String())
}

// FileName is the download name for an export taken on day.
func FileName(day time.Time, ext string) string {
	return "contacts-" + day.UTC().Format("2006-01-02") + "." + ext
}

func row(c *contact.Contact) []string {
	return []string{
		c.Name,
		c.Company,
		c.Email,
		c.Phone,
		string(c.BusinessType),
		strconv.Itoa(c.Priority),
		productsCell(c.Products),
		c.Notes,
		c.SalesPerson,
		c.CreatedAt.UTC().Format("2006-01-02"),
	}
}

func productsCell(products []contact.Product) string {
	parts := make([]string, len(products))
	for i, p := range products {
		var b strings.Builder
		b.WriteString(p.Type.Resolve())
		b.WriteString(": ")
		if p.Name != "" {
			b.WriteString(p.Name)
		} else {
			b.WriteString(photoOnly)
		}
		if p.Pieces != "" {
			b.WriteString(" (Qty: " + p.Pieces + ")")
		}
		if p.Color != "" {
			b.WriteString(" - " + p.Color)
		}
		if n := p.PhotoCount(); n > 0 {
			b.WriteString(" [" + strconv.Itoa(n) + " photo(s)]")
		}
		parts[i] = b.String()
	}
	return strings.Join(parts, "; ")
}

func writeRow(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}
