// Package sales defines the canonical sales record and the per-region
// aggregation over it.
package sales

import (
	"github.com/codesellers/backend/internal/locale"
	"github.com/codesellers/backend/internal/region"
)

// FiscalKind tells which source column the fiscal identifier came from.
type FiscalKind string

const (
	FiscalCNPJ FiscalKind = "CNPJ"
	FiscalCPF  FiscalKind = "CPF"
	FiscalNone FiscalKind = ""
)

type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Record is a validated sales row. Records are created once during a load
// and never mutated afterwards.
type Record struct {
	SeqID               int         `json:"id"`
	Date                locale.Date `json:"date"`
	Geo                 *GeoPoint   `json:"geo,omitempty"`
	FiscalID            string      `json:"fiscal_id"`
	FiscalKind          FiscalKind  `json:"fiscal_kind"`
	Customer            string      `json:"customer"`
	Region              region.Tag  `json:"region"`
	SubdivisionCode     string      `json:"subdivision_code"`
	SubdivisionName     string      `json:"subdivision_name"`
	SubdivisionInferred bool        `json:"subdivision_inferred"`
	Product             string      `json:"product"`
	Quantity            int         `json:"quantity"`
	UnitPrice           float64     `json:"unit_price"`
	TotalValue          float64     `json:"total_value"`
	Profit              float64     `json:"profit"`
	Stock               *int        `json:"stock,omitempty"`
}

// TotalOf is the only way a record's total value is computed.
func TotalOf(quantity int, unitPrice float64) float64 {
	return float64(quantity) * unitPrice
}
