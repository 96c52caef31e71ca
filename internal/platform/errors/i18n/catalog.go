// Package i18n renders localized error messages from the "errors" catalog
// namespace.
package i18n

import (
	"strings"
	"sync"
	"text/template"

	i18ncatalog "github.com/louisbranch/ringcolor/internal/platform/i18n/catalog"
)

// Code is an error code string. The errors package imports this one, so the
// type cannot be shared.
type Code = string

// Catalog renders error message templates for one resolved locale.
type Catalog struct {
	messages map[Code]string
}

// catalogs caches one Catalog per resolved locale.
var catalogs sync.Map

// GetCatalog returns the catalog for locale, resolved against the embedded
// bundle. Blank and unknown locales get the en-US catalog.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = i18ncatalog.BaseLocale
	}
	resolved, messages := i18ncatalog.Default().NamespaceMessagesWithFallback(requested, "errors")
	if cached, ok := catalogs.Load(resolved); ok {
		return cached.(*Catalog)
	}
	cached, _ := catalogs.LoadOrStore(resolved, newCatalog(messages))
	return cached.(*Catalog)
}

func newCatalog(messages map[Code]string) *Catalog {
	cloned := make(map[Code]string, len(messages))
	for key, value := range messages {
		cloned[key] = value
	}
	return &Catalog{messages: cloned}
}

// Format renders the template for code with metadata. A missing template
// renders as the code, and a broken one as its raw text.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	text, ok := c.messages[code]
	if !ok {
		return code
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	tmpl, err := template.New(code).Parse(text)
	if err != nil {
		return text
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, metadata); err != nil {
		return text
	}
	return out.String()
}
