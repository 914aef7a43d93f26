package order

import (
	"fmt"
	"net/url"
	"strings"

	"storefront-service/internal/cart"
	"storefront-service/internal/model"
)

// Labels are the fixed phrases of the order message
type Labels struct {
	Intro     string
	Quantity  string
	Price     string
	Total     string
	Currency  string
	Separator string
}

// DefaultLabels are the storefront's Arabic phrases
var DefaultLabels = Labels{
	Intro:     "مرحباً! أريد طلب المنتجات التالية:",
	Quantity:  "الكمية",
	Price:     "السعر",
	Total:     "الإجمالي",
	Currency:  "ج.م",
	Separator: "───────────────",
}

type Formatter struct {
	Labels Labels
}

func NewFormatter() *Formatter {
	return &Formatter{Labels: DefaultLabels}
}

// Format renders the order summary. items is only read.
func (f *Formatter) Format(items []model.CartItem) string {
	l := f.Labels
	var b strings.Builder

	b.WriteString(l.Intro)
	b.WriteString("\n\n")
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, it.Name)
		fmt.Fprintf(&b, "   %s: %d\n", l.Quantity, it.Quantity)
		fmt.Fprintf(&b, "   %s: %.2f %s\n\n", l.Price, it.Subtotal(), l.Currency)
	}
	b.WriteString(l.Separator)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s: %.2f %s", l.Total, cart.Total(items), l.Currency)

	return b.String()
}

// componentEscaper turns url.QueryEscape output into the
// encodeURIComponent form: spaces as %20 and ! ' ( ) * left as is.
var componentEscaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// HandoffLink builds <baseURL>/<recipient>?text=<message> with the message
// percent-encoded the way encodeURIComponent does it.
func HandoffLink(baseURL, recipient, message string) string {
	text := componentEscaper.Replace(url.QueryEscape(message))
	return strings.TrimRight(baseURL, "/") + "/" + url.PathEscape(recipient) + "?text=" + text
}
