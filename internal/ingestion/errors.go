package ingestion

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumn is the structural failure raised when the header lacks a
// required column. It aborts the whole batch.
var ErrMissingColumn = errors.New("required column missing")

type StructuralError struct {
	Missing []string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingColumn, strings.Join(e.Missing, ", "))
}

func (e *StructuralError) Unwrap() error { return ErrMissingColumn }

// Row skip reasons.
const (
	ReasonInvalidDate      = "invalid_date"
	ReasonInvalidQuantity  = "invalid_quantity"
	ReasonInvalidPrice     = "invalid_unit_price"
	ReasonInvalidProfit    = "invalid_profit"
	ReasonMissingCustomer  = "missing_customer"
	ReasonUnresolvedRegion = "unresolved_region"
)

// RowFailure records one skipped row for diagnostics.
type RowFailure struct {
	Row    int      `json:"row"`
	Reason string   `json:"reason"`
	Detail string   `json:"detail,omitempty"`
	Fields []string `json:"fields"`
}
