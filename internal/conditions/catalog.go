// Package conditions serves the educational reference pages about skin
// conditions.
package conditions

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/pielsanaia/pielsana/pkg/models"
)

//go:embed catalog.yaml
var catalogYAML []byte

var aliases = map[string]string{
	"acne":            "acne",
	"rosacea":         "rosacea",
	"manchas":         "sunspots",
	"mancha-solar":    "sunspots",
	"manchas-solares": "sunspots",
	"lunares":         "moles",
	"lunar":           "moles",
	"ronchas":         "urticaria",
	"quemadura":       "quemaduras",
}

// remoteSlugs maps canonical slugs onto the keys the analysis backend uses.
var remoteSlugs = map[string]string{
	"sunspots": "manchas",
	"moles":    "lunares",
}

// NormalizeSlug lowercases s, folds accents, joins words with hyphens and
// resolves Spanish aliases.
func NormalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if folded, _, err := transform.String(accentFolder(), s); err == nil {
		s = folded
	}
	s = strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	}), "-")
	if canonical, ok := aliases[s]; ok {
		return canonical
	}
	return s
}

// RemoteSlug returns the backend key for a canonical slug.
func RemoteSlug(slug string) string {
	if r, ok := remoteSlugs[slug]; ok {
		return r
	}
	return slug
}

func accentFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Catalog is the bundled, read-only set of conditions.
type Catalog struct {
	bySlug map[string]models.ConditionInfo
	order  []string
}

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog decodes a YAML document with a top-level conditions list.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Conditions []models.ConditionInfo `yaml:"conditions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing condition catalog: %w", err)
	}

	c := &Catalog{bySlug: make(map[string]models.ConditionInfo, len(doc.Conditions))}
	for i, info := range doc.Conditions {
		slug := NormalizeSlug(info.Slug)
		if slug == "" || info.Title == "" {
			return nil, fmt.Errorf("condition catalog entry %d: name and title are required", i)
		}
		if _, dup := c.bySlug[slug]; dup {
			return nil, fmt.Errorf("condition catalog: duplicate entry %q", slug)
		}
		info.Slug = slug
		info.Source = models.ConditionSourceStatic
		c.bySlug[slug] = info
		c.order = append(c.order, slug)
	}
	return c, nil
}

// Get returns the condition for an already normalized slug.
func (c *Catalog) Get(slug string) (*models.ConditionInfo, bool) {
	info, ok := c.bySlug[slug]
	if !ok {
		return nil, false
	}
	return &info, true
}

// List returns every condition in catalog order.
func (c *Catalog) List() []models.ConditionInfo {
	out := make([]models.ConditionInfo, 0, len(c.order))
	for _, slug := range c.order {
		out = append(out, c.bySlug[slug])
	}
	return out
}
