package ranking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_NGrams(t *testing.T) {
	v := &vectorizer{opts: DefaultOptions()}
	assert.Equal(t,
		[]string{"cadeira", "gamer", "azul", "cadeira gamer", "gamer azul"},
		v.analyze("Cadeira Gamer, a AZUL"))
}

func TestAnalyze_DropsSingleCharacters(t *testing.T) {
	v := &vectorizer{opts: Options{MaxFeatures: 10, MaxNGram: 1}}
	assert.Equal(t, []string{"r1", "mesa"}, v.analyze("R1 é mesa"))
}

func TestFitTransform_Normalized(t *testing.T) {
	v := &vectorizer{opts: DefaultOptions()}
	vectors, err := v.fitTransform([]string{"notebook pro", "notebook basic", "mesa"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	for _, vec := range vectors {
		var sum float64
		for _, e := range vec {
			sum += e.weight * e.weight
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
		for i := 1; i < len(vec); i++ {
			assert.Less(t, vec[i-1].index, vec[i].index)
		}
	}
}

func TestFitTransform_SmoothedIDF(t *testing.T) {
	v := &vectorizer{opts: Options{MaxFeatures: 10, MaxNGram: 1}}
	vectors, err := v.fitTransform([]string{"aa bb", "aa"})
	require.NoError(t, err)

	// vocabulary: aa (df=2), bb (df=1)
	idfA := math.Log(3.0/3.0) + 1
	idfB := math.Log(3.0/2.0) + 1
	norm := math.Sqrt(idfA*idfA + idfB*idfB)

	require.Len(t, vectors[0], 2)
	assert.InDelta(t, idfA/norm, vectors[0][0].weight, 1e-12)
	assert.InDelta(t, idfB/norm, vectors[0][1].weight, 1e-12)
	assert.InDelta(t, 1.0, vectors[1][0].weight, 1e-12)
}

func TestFitTransform_MaxFeatures(t *testing.T) {
	v := &vectorizer{opts: Options{MaxFeatures: 2, MaxNGram: 1}}
	vectors, err := v.fitTransform([]string{"cc bb aa", "cc bb", "cc dd"})
	require.NoError(t, err)

	// cc=3, bb=2 kept; aa and dd dropped
	assert.Len(t, vectors[0], 2)
	assert.Len(t, vectors[2], 1)
}

func TestFitTransform_Degenerate(t *testing.T) {
	v := &vectorizer{opts: DefaultOptions()}

	_, err := v.fitTransform(nil)
	assert.ErrorIs(t, err, ErrDegenerateVocabulary)

	_, err = v.fitTransform([]string{"a", "!", ""})
	assert.ErrorIs(t, err, ErrDegenerateVocabulary)
}

func TestSparseDot(t *testing.T) {
	a := sparseVector{{0, 0.5}, {2, 0.5}, {5, 1}}
	b := sparseVector{{2, 2}, {3, 1}, {5, 1}}
	assert.InDelta(t, 2.0, a.dot(b), 1e-12)
	assert.Zero(t, a.dot(nil))
}
