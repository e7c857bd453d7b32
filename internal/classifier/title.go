package classifier

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aleister1102/httpeek/internal/models"
)

// CloudflareTitle replaces generic challenge titles on Cloudflare-fronted hosts.
const CloudflareTitle = "Cloudflare"

var genericTitles = map[string]struct{}{
	"":                                 {},
	"Just a moment...":                 {},
	"Attention Required! | Cloudflare": {},
}

// ExtractTitle returns the trimmed text of the first <title> element, or "".
func ExtractTitle(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// DecorateTitle builds the display title from the raw title and the CDN signal.
func DecorateTitle(raw string, cdn bool) string {
	_, generic := genericTitles[raw]
	switch {
	case cdn && generic:
		return CloudflareTitle
	case cdn:
		return raw + " [CF]"
	case raw == "":
		return models.NoTitle
	default:
		return raw
	}
}
