package ranking

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/kljensen/snowball"
)

// ErrDegenerateVocabulary is returned when no document yields a usable term.
var ErrDegenerateVocabulary = errors.New("degenerate vocabulary")

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

type Options struct {
	MaxFeatures int
	MaxNGram    int
	// Stemming reduces word tokens to their Portuguese stem before n-grams
	// are formed.
	Stemming bool
}

func DefaultOptions() Options {
	return Options{MaxFeatures: 1000, MaxNGram: 2}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxFeatures <= 0 {
		o.MaxFeatures = d.MaxFeatures
	}
	if o.MaxNGram <= 0 {
		o.MaxNGram = d.MaxNGram
	}
	return o
}

type entry struct {
	index  int
	weight float64
}

// sparseVector holds non-zero weights sorted by term index.
type sparseVector []entry

func (a sparseVector) dot(b sparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].index == b[j].index:
			sum += a[i].weight * b[j].weight
			i++
			j++
		case a[i].index < b[j].index:
			i++
		default:
			j++
		}
	}
	return sum
}

// vectorizer fits a TF-IDF space over a set of documents in one pass.
type vectorizer struct {
	opts Options
}

func (v *vectorizer) analyze(text string) []string {
	words := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if v.opts.Stemming {
		for i, w := range words {
			if stem, err := snowball.Stem(w, "portuguese", true); err == nil && stem != "" {
				words[i] = stem
			}
		}
	}

	terms := make([]string, 0, len(words)*v.opts.MaxNGram)
	terms = append(terms, words...)
	for n := 2; n <= v.opts.MaxNGram; n++ {
		for i := 0; i+n <= len(words); i++ {
			terms = append(terms, strings.Join(words[i:i+n], " "))
		}
	}
	return terms
}

// fitTransform builds the vocabulary from docs (capped to the MaxFeatures
// most frequent terms, ties broken alphabetically), weights counts with the
// smoothed idf ln((1+n)/(1+df))+1 and L2-normalizes each row.
func (v *vectorizer) fitTransform(docs []string) ([]sparseVector, error) {
	if len(docs) == 0 {
		return nil, ErrDegenerateVocabulary
	}

	counts := make([]map[string]int, len(docs))
	totals := make(map[string]int)
	df := make(map[string]int)
	for i, doc := range docs {
		c := make(map[string]int)
		for _, term := range v.analyze(doc) {
			c[term]++
		}
		for term, n := range c {
			totals[term] += n
			df[term]++
		}
		counts[i] = c
	}
	if len(totals) == 0 {
		return nil, ErrDegenerateVocabulary
	}

	terms := make([]string, 0, len(totals))
	for term := range totals {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if totals[terms[i]] != totals[terms[j]] {
			return totals[terms[i]] > totals[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > v.opts.MaxFeatures {
		terms = terms[:v.opts.MaxFeatures]
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(docs))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	vectors := make([]sparseVector, len(docs))
	for i, c := range counts {
		vec := make(sparseVector, 0, len(c))
		for term, count := range c {
			if idx, ok := vocab[term]; ok {
				vec = append(vec, entry{index: idx, weight: float64(count) * idf[idx]})
			}
		}
		sort.Slice(vec, func(a, b int) bool { return vec[a].index < vec[b].index })

		var norm float64
		for _, e := range vec {
			norm += e.weight * e.weight
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range vec {
				vec[j].weight /= norm
			}
		}
		vectors[i] = vec
	}

	return vectors, nil
}
