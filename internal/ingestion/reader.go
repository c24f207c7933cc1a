package ingestion

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type ReadOptions struct {
	// Latin1Fallback decodes the input as ISO-8859-1 when it is not valid UTF-8.
	Latin1Fallback bool
}

// ReadFile reads a ';'-delimited file into its header and data rows.
func ReadFile(path string, opts ReadOptions) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return Read(f, opts)
}

// Read parses delimited input. An empty input yields a nil header, which the
// normalizer reports as a structural failure.
func Read(r io.Reader, opts ReadOptions) ([]string, [][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	if !utf8.Valid(data) {
		if !opts.Latin1Fallback {
			return nil, nil, fmt.Errorf("dataset is not valid UTF-8")
		}
		data, err = charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode latin-1 dataset: %w", err)
		}
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = ';'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	all, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	return all[0], all[1:], nil
}
