package report

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/georgemunganga/exhibition-crm/internal/modules/contact"
)

// Share is a message for the back office, opened in the operator's mail
// client. Nothing is sent by the server.
type Share struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Mailto  string `json:"mailto"`
}

// ShareMessage renders c field by field for recipient.
func ShareMessage(c *contact.Contact, recipient string) Share {
	var b strings.Builder
	b.WriteString("New Exhibition Lead\n\n")
	b.WriteString("Contact Information:\n")
	fmt.Fprintf(&b, "- Name: %s\n", c.Name)
	fmt.Fprintf(&b, "- Company: %s\n", c.Company)
	fmt.Fprintf(&b, "- Email: %s\n", c.Email)
	fmt.Fprintf(&b, "- Phone: %s\n", c.Phone)
	fmt.Fprintf(&b, "- Business Type: %s\n", c.BusinessType)
	fmt.Fprintf(&b, "- Priority: %d/10\n\n", c.Priority)

	b.WriteString("Products of Interest:\n")
	if len(c.Products) == 0 {
		b.WriteString("- none\n")
	}
	for _, p := range c.Products {
		b.WriteString("- " + shareProduct(p) + "\n")
	}

	b.WriteString("\nNotes:\n")
	if strings.TrimSpace(c.Notes) != "" {
		b.WriteString(c.Notes + "\n")
	} else {
		b.WriteString("No additional notes\n")
	}

	fmt.Fprintf(&b, "\nCollected by: %s\n", c.SalesPerson)
	fmt.Fprintf(&b, "Date: %s\n", c.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))

	s := Share{
		To:      recipient,
		Subject: "Exhibition Lead: " + c.Name,
		Body:    b.String(),
	}
	s.Mailto = "mailto:" + recipient + "?subject=" + mailEscape(s.Subject) + "&body=" + mailEscape(s.Body)
	return s
}

func shareProduct(p contact.Product) string {
	var b strings.Builder
	b.WriteString(p.Type.Resolve() + ": ")
	if p.Name != "" {
		b.WriteString(p.Name)
	} else {
		b.WriteString(photoOnly)
	}
	if p.Pieces != "" {
		b.WriteString(" (Qty: " + p.Pieces + ")")
	}
	if p.Color != "" {
		b.WriteString(" (" + p.Color + ")")
	}
	if p.Details != "" {
		b.WriteString(" - " + p.Details)
	}
	if n := p.PhotoCount(); n > 0 {
		b.WriteString(" [" + strconv.Itoa(n) + " photo(s) attached]")
	}
	return b.String()
}

// mailEscape percent-encodes for mailto headers, where "+" is not a space.
func mailEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
