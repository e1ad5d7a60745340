// Package assets implements the fixed asset register: a static catalog of
// amortizable categories applied to user-entered investment amounts.
package assets

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Class distinguishes tangible from intangible fixed assets.
type Class string

const (
	// Material covers tangible assets: land, buildings, equipment, vehicles.
	Material Class = "material"
	// Immaterial covers intangible assets: software licenses, patents.
	Immaterial Class = "immaterial"
)

// Valid reports whether c is one of the known classes.
func (c Class) Valid() bool {
	return c == Material || c == Immaterial
}

// Category is an immutable catalog entry.
type Category struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Rate  float64 `json:"amortizationRate"`
	Class Class   `json:"class"`

	keywords []string
}

var catalog = []Category{
	{Key: "terreni", Label: "Terreni", Rate: 0, Class: Material,
		keywords: []string{"terren", "land", "suol"}},
	{Key: "fabbricati", Label: "Fabbricati", Rate: 0.03, Class: Material,
		keywords: []string{"fabbricat", "immobil", "edifici", "capannon", "building"}},
	{Key: "impianti_macchinari", Label: "Impianti e macchinari", Rate: 0.10, Class: Material,
		keywords: []string{"impiant", "macchin", "machinery", "plant"}},
	{Key: "it_elettronica", Label: "Attrezzature informatiche ed elettroniche", Rate: 0.20, Class: Material,
		keywords: []string{"informatic", "elettronic", "computer", "hardware", "server", "pc"}},
	{Key: "mobili_arredi", Label: "Mobili e arredi d'ufficio", Rate: 0.12, Class: Material,
		keywords: []string{"mobil", "arred", "furniture", "furnishing", "scrivani"}},
	{Key: "automezzi_commerciali", Label: "Automezzi commerciali", Rate: 0.20, Class: Material,
		keywords: []string{"automezz", "furgon", "camion", "autocarr", "van", "truck"}},
	{Key: "autovetture", Label: "Autovetture", Rate: 0.25, Class: Material,
		keywords: []string{"autovettur", "auto", "car", "vettur"}},
	{Key: "software_licenze", Label: "Software e licenze", Rate: 0.20, Class: Immaterial,
		keywords: []string{"software", "licenz", "licens", "applicativ", "gestional"}},
	{Key: "brevetti_marchi", Label: "Brevetti e marchi", Rate: 0.0556, Class: Immaterial,
		keywords: []string{"brevett", "marchi", "patent", "trademark", "immaterial", "avviament", "goodwill"}},
}

var byKey = func() map[string]Category {
	m := make(map[string]Category, len(catalog))
	for _, c := range catalog {
		m[c.Key] = c
	}
	return m
}()

// Catalog returns a copy of the nine predefined categories in display order.
func Catalog() []Category {
	out := make([]Category, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a category by its key.
func Lookup(key string) (Category, bool) {
	c, ok := byKey[strings.TrimSpace(key)]
	return c, ok
}

// wholeWord keywords never match as a prefix ("automazione", "landing").
var wholeWord = map[string]bool{"auto": true, "land": true}

// MatchLabel finds the category whose keywords match a free-form label, for
// records that predate explicit category keys. Matching ignores case and
// accents and compares keywords against word prefixes; keywords of three
// letters or fewer, and those in wholeWord, must match a whole word. The
// longest matching keyword wins; ties go to the earlier catalog entry.
func MatchLabel(label string) (Category, bool) {
	words := strings.FieldsFunc(normalizeLabel(label), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return Category{}, false
	}

	best, bestLen := Category{}, 0
	for _, c := range catalog {
		for _, kw := range c.keywords {
			if len(kw) <= bestLen || !matchesAny(words, kw) {
				continue
			}
			best, bestLen = c, len(kw)
		}
	}
	return best, bestLen > 0
}

func matchesAny(words []string, kw string) bool {
	prefix := len(kw) > 3 && !wholeWord[kw]
	for _, w := range words {
		if w == kw || (prefix && strings.HasPrefix(w, kw)) {
			return true
		}
	}
	return false
}

func normalizeLabel(label string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, label)
	if err != nil {
		out = label
	}
	return strings.ToLower(out)
}
