package normalize

import (
	"strings"

	"golang.org/x/net/html"
)

// cellText returns the visible text of a cell that may carry inline markup,
// e.g. `<a href="lisans.php?y=102210277">102210277</a>` yields "102210277".
// Plain cells come back as-is. Malformed markup degrades to whatever text
// the tokenizer could recover.
func cellText(cell string) string {
	if !strings.ContainsRune(cell, '<') {
		return html.UnescapeString(cell)
	}

	tokenizer := html.NewTokenizer(strings.NewReader(cell))
	var buf strings.Builder
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return collapseSpace(buf.String())
		case html.TextToken:
			buf.Write(tokenizer.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "br" {
				buf.WriteByte(' ')
			}
		}
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
