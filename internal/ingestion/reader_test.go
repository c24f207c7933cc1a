package ingestion

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const sampleCSV = "Latitude;Longitude;Data;CPF;CNPJ;nome_cliente;regiao;estado;produto;quantidade;valor_unitario;lucro_total\n" +
	"-23,5;-46,6;15/05/2023;123;;Ana;Sudeste;São Paulo;Mesa;2;10,5;4,0\n"

func TestRead_Basic(t *testing.T) {
	header, rows, err := Read(strings.NewReader(sampleCSV), ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, testHeader, header)
	require.Len(t, rows, 1)
	assert.Equal(t, "São Paulo", rows[0][7])
}

func TestRead_StripsBOM(t *testing.T) {
	header, _, err := Read(strings.NewReader("\uFEFF"+sampleCSV), ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Latitude", header[0])
}

func TestRead_Latin1Fallback(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String(sampleCSV)
	require.NoError(t, err)

	_, _, err = Read(strings.NewReader(encoded), ReadOptions{})
	require.Error(t, err)

	_, rows, err := Read(strings.NewReader(encoded), ReadOptions{Latin1Fallback: true})
	require.NoError(t, err)
	assert.Equal(t, "São Paulo", rows[0][7])
}

func TestRead_Empty(t *testing.T) {
	header, rows, err := Read(strings.NewReader(""), ReadOptions{})
	require.NoError(t, err)
	assert.Nil(t, header)
	assert.Nil(t, rows)

	_, err = NewNormalizer().Normalize(header, rows)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vendas.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	header, rows, err := ReadFile(path, ReadOptions{})
	require.NoError(t, err)
	assert.Len(t, header, 12)
	assert.Len(t, rows, 1)

	_, _, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"), ReadOptions{})
	assert.Error(t, err)
}
