package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags_Order(t *testing.T) {
	assert.Equal(t, []Tag{Norte, Nordeste, CentroOeste, Sudeste, Sul}, Tags())

	got := Tags()
	got[0] = "mutated"
	assert.Equal(t, Norte, Tags()[0])
}

func TestCatalog_Consistency(t *testing.T) {
	total := 0
	for _, tag := range Tags() {
		codes := Codes(tag)
		require.NotEmpty(t, codes, tag)
		for _, code := range codes {
			r, ok := RegionOf(code)
			require.True(t, ok, code)
			assert.Equal(t, tag, r)

			_, ok = Name(code)
			assert.True(t, ok, code)
		}
		total += len(codes)
	}
	assert.Equal(t, 27, total)
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Tag
		ok    bool
	}{
		{"Sul", Sul, true},
		{"sudeste", Sudeste, true},
		{"NORDESTE", Nordeste, true},
		{"Centro-Oeste", CentroOeste, true},
		{"centro oeste", CentroOeste, true},
		{"CentroOeste", CentroOeste, true},
		{" Norte ", Norte, true},
		{"Leste", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Parse(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupSubdivision(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"BR-SP", "BR-SP", true},
		{"sp", "BR-SP", true},
		{"São Paulo", "BR-SP", true},
		{"sao paulo", "BR-SP", true},
		{"Rio Grande do Sul", "BR-RS", true},
		{"Atlântida", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := LookupSubdivision(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveSubdivisionCode(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		region      Tag
		wantCode    string
		wantMatched bool
	}{
		{name: "exact", input: "Bahia", region: Nordeste, wantCode: "BR-BA", wantMatched: true},
		{name: "case insensitive", input: "rio de janeiro", region: Sudeste, wantCode: "BR-RJ", wantMatched: true},
		{name: "internal whitespace", input: "Mato  Grosso do   Sul", region: CentroOeste, wantCode: "BR-MS", wantMatched: true},
		{name: "accents dropped", input: "Ceara", region: Nordeste, wantCode: "BR-CE", wantMatched: true},
		{name: "unknown name falls back to first code", input: "Atlântida", region: Nordeste, wantCode: "BR-AL"},
		{name: "empty name falls back", input: "", region: Sul, wantCode: "BR-PR"},
		{name: "name from another region falls back", input: "Bahia", region: Sul, wantCode: "BR-PR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, matched := ResolveSubdivisionCode(tt.input, tt.region)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMatched, matched)
		})
	}
}

func TestResolveSubdivisionCode_UnknownRegion(t *testing.T) {
	code, matched := ResolveSubdivisionCode("Bahia", "Leste")
	assert.Empty(t, code)
	assert.False(t, matched)
}
