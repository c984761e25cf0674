package catalog

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var descriptionPolicy = bluemonday.UGCPolicy()

// RenderDescription converts a markdown product description into sanitized HTML.
func RenderDescription(markdown string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return descriptionPolicy.Sanitize(markdown)
	}
	return descriptionPolicy.Sanitize(buf.String())
}
