package intake

import (
	"strings"

	"golang.org/x/net/html"
)

// PlainText flattens Zulip's rendered HTML: tags become spaces, entities are
// decoded and runs of whitespace collapse to one space.
func PlainText(markup string) string {
	if markup == "" {
		return ""
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		default:
			b.WriteByte(' ')
		}
	}
}
