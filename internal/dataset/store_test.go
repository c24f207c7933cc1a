package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesellers/backend/internal/ingestion"
	"github.com/codesellers/backend/internal/region"
)

const validCSV = "Latitude;Longitude;Data;CPF;CNPJ;nome_cliente;regiao;estado;produto;quantidade;valor_unitario;lucro_total\n" +
	"-23,5;-46,6;31/31/2023;1;;Ana;Sudeste;São Paulo;Mesa;1;100,00;20,00\n" +
	"-30,0;-51,2;10/01/2023;2;;Bruno;Sul;Rio Grande do Sul;Cadeira;2;50,50;10,00\n" +
	"-22,9;-43,2;11/01/2023;3;;Carla;Sudeste;Rio de Janeiro;Sofá;3;10,25;5,00\n"

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vendas.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStore_StartsEmpty(t *testing.T) {
	s := NewStore(Options{})
	c := s.Snapshot()
	require.NotNil(t, c)
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Region(region.Sul))
}

func TestStore_Load(t *testing.T) {
	s := NewStore(Options{})

	c, err := s.Load(writeFile(t, validCSV))
	require.NoError(t, err)
	assert.Same(t, c, s.Snapshot())
	assert.Equal(t, 2, c.Len())
	assert.NotEmpty(t, c.Version)

	st := c.Stats()
	assert.Equal(t, 2, st.Loaded)
	assert.Equal(t, 1, st.Skipped)
	assert.Equal(t, 1, st.SkippedByReason[ingestion.ReasonInvalidDate])
	assert.Equal(t, 1, st.PerRegion[region.Sul])
	assert.Equal(t, 1, st.PerRegion[region.Sudeste])
	assert.Equal(t, 0, st.PerRegion[region.Norte])
}

func TestStore_StructuralFailureLeavesEmptyCorpus(t *testing.T) {
	s := NewStore(Options{})
	_, err := s.Load(writeFile(t, validCSV))
	require.NoError(t, err)

	old := s.Snapshot()

	_, err = s.Load(writeFile(t, "Data;produto\n01/01/2023;Mesa\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ingestion.ErrMissingColumn)

	assert.Equal(t, 0, s.Snapshot().Len())
	assert.Empty(t, s.Snapshot().Partitions)
	assert.Equal(t, 2, old.Len(), "earlier snapshots stay intact")
}

func TestStore_UnreadableFile(t *testing.T) {
	s := NewStore(Options{})
	_, err := s.Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Equal(t, 0, s.Snapshot().Len())
}
