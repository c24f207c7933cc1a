// Package region holds the closed catalog of Brazilian macro-regions and
// their states (subdivisions).
package region

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tag identifies one of the five macro-regions.
type Tag string

const (
	Norte       Tag = "Norte"
	Nordeste    Tag = "Nordeste"
	CentroOeste Tag = "CentroOeste"
	Sudeste     Tag = "Sudeste"
	Sul         Tag = "Sul"
)

var tags = []Tag{Norte, Nordeste, CentroOeste, Sudeste, Sul}

var codesByRegion = map[Tag][]string{
	Norte:       {"BR-AC", "BR-AP", "BR-AM", "BR-PA", "BR-RO", "BR-RR", "BR-TO"},
	Nordeste:    {"BR-AL", "BR-BA", "BR-CE", "BR-MA", "BR-PB", "BR-PE", "BR-PI", "BR-RN", "BR-SE"},
	CentroOeste: {"BR-DF", "BR-GO", "BR-MT", "BR-MS"},
	Sudeste:     {"BR-ES", "BR-MG", "BR-RJ", "BR-SP"},
	Sul:         {"BR-PR", "BR-RS", "BR-SC"},
}

var names = map[string]string{
	"BR-AC": "Acre",
	"BR-AP": "Amapá",
	"BR-AM": "Amazonas",
	"BR-PA": "Pará",
	"BR-RO": "Rondônia",
	"BR-RR": "Roraima",
	"BR-TO": "Tocantins",
	"BR-AL": "Alagoas",
	"BR-BA": "Bahia",
	"BR-CE": "Ceará",
	"BR-MA": "Maranhão",
	"BR-PB": "Paraíba",
	"BR-PE": "Pernambuco",
	"BR-PI": "Piauí",
	"BR-RN": "Rio Grande do Norte",
	"BR-SE": "Sergipe",
	"BR-DF": "Distrito Federal",
	"BR-GO": "Goiás",
	"BR-MT": "Mato Grosso",
	"BR-MS": "Mato Grosso do Sul",
	"BR-ES": "Espírito Santo",
	"BR-MG": "Minas Gerais",
	"BR-RJ": "Rio de Janeiro",
	"BR-SP": "São Paulo",
	"BR-PR": "Paraná",
	"BR-RS": "Rio Grande do Sul",
	"BR-SC": "Santa Catarina",
}

var (
	regionByCode map[string]Tag
	tagByKey     map[string]Tag
	codeByName   map[string]string
	codeByKey    map[string]string
)

func init() {
	regionByCode = make(map[string]Tag, len(names))
	for tag, codes := range codesByRegion {
		for _, code := range codes {
			regionByCode[code] = tag
		}
	}

	tagByKey = make(map[string]Tag, len(tags))
	for _, tag := range tags {
		tagByKey[foldKey(string(tag))] = tag
	}

	codeByName = make(map[string]string, len(names))
	codeByKey = make(map[string]string, len(names))
	for code, name := range names {
		codeByName[strings.ToLower(name)] = code
		codeByKey[foldKey(name)] = code
	}
}

// Tags returns the five region tags in canonical order.
func Tags() []Tag {
	out := make([]Tag, len(tags))
	copy(out, tags)
	return out
}

// Codes returns the ordered subdivision codes of a region.
func Codes(tag Tag) []string {
	codes := codesByRegion[tag]
	out := make([]string, len(codes))
	copy(out, codes)
	return out
}

// RegionOf returns the region a subdivision code belongs to.
func RegionOf(code string) (Tag, bool) {
	tag, ok := regionByCode[code]
	return tag, ok
}

// Name returns the canonical display name of a subdivision code.
func Name(code string) (string, bool) {
	name, ok := names[code]
	return name, ok
}

// Parse maps a free-text region name onto a tag. Case, accents, spaces and
// hyphens are ignored, so "centro-oeste" resolves to CentroOeste.
func Parse(text string) (Tag, bool) {
	tag, ok := tagByKey[foldKey(text)]
	return tag, ok
}

// Valid reports whether tag is one of the closed set.
func Valid(tag Tag) bool {
	_, ok := codesByRegion[tag]
	return ok
}

// LookupSubdivision finds the code for a subdivision written as a code
// ("BR-SP", "sp") or a display name ("São Paulo", "sao  paulo").
func LookupSubdivision(text string) (string, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return "", false
	}

	code := strings.ToUpper(s)
	if !strings.HasPrefix(code, "BR-") {
		code = "BR-" + code
	}
	if _, ok := names[code]; ok {
		return code, true
	}

	if code, ok := codeByName[strings.ToLower(s)]; ok {
		return code, true
	}
	code, ok := codeByKey[foldKey(s)]
	return code, ok
}

// ResolveSubdivisionCode matches a free-text subdivision name against the
// display names of the given region: first case-insensitively, then ignoring
// whitespace and accents. When neither matches, the region's first listed
// code is returned with matched=false. That fallback is best-effort and
// unverified.
func ResolveSubdivisionCode(name string, tag Tag) (code string, matched bool) {
	codes := codesByRegion[tag]
	if len(codes) == 0 {
		return "", false
	}

	lower := strings.ToLower(strings.TrimSpace(name))
	if code, ok := codeByName[lower]; ok && regionByCode[code] == tag {
		return code, true
	}

	if key := foldKey(name); key != "" {
		if code, ok := codeByKey[key]; ok && regionByCode[code] == tag {
			return code, true
		}
	}

	return codes[0], false
}

// foldKey lowercases, strips diacritics and drops whitespace and hyphens.
func foldKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
