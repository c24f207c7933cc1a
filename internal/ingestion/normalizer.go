package ingestion

import (
	"strings"

	"go.uber.org/zap"

	"github.com/codesellers/backend/internal/locale"
	"github.com/codesellers/backend/internal/region"
	"github.com/codesellers/backend/internal/sales"
	"github.com/codesellers/backend/pkg/logger"
)

// Source column names.
const (
	ColLatitude  = "Latitude"
	ColLongitude = "Longitude"
	ColDate      = "Data"
	ColCPF       = "CPF"
	ColCNPJ      = "CNPJ"
	ColCustomer  = "nome_cliente"
	ColRegion    = "regiao"
	ColState     = "estado"
	ColProduct   = "produto"
	ColQuantity  = "quantidade"
	ColUnitPrice = "valor_unitario"
	ColProfit    = "lucro_total"
	ColStock     = "estoque_atual"
)

// RequiredColumns lists the header names every input must carry.
var RequiredColumns = []string{
	ColLatitude, ColLongitude, ColDate, ColCPF, ColCNPJ, ColCustomer,
	ColRegion, ColState, ColProduct, ColQuantity, ColUnitPrice, ColProfit,
}

// Result is the outcome of one normalization pass.
type Result struct {
	Records              []sales.Record
	Partitions           map[region.Tag][]sales.Record
	Skipped              []RowFailure
	SubdivisionFallbacks int
}

// Normalizer turns raw rows into canonical sales records.
type Normalizer struct {
	log *zap.Logger
}

func NewNormalizer() *Normalizer {
	return &Normalizer{log: logger.GetLogger()}
}

type columns map[string]int

func (c columns) get(row []string, name string) string {
	idx, ok := c[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func resolveColumns(header []string) (columns, error) {
	cols := make(columns, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &StructuralError{Missing: missing}
	}
	return cols, nil
}

// Normalize validates every row against the header. A missing required
// column fails the batch; any other problem skips only the row. Sequence ids
// start at 1 and are assigned in input order to accepted rows only.
func (n *Normalizer) Normalize(header []string, rows [][]string) (*Result, error) {
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Records:    make([]sales.Record, 0, len(rows)),
		Partitions: make(map[region.Tag][]sales.Record, len(region.Tags())),
	}

	nextID := 1
	for i, row := range rows {
		rec, failure := n.normalizeRow(cols, row)
		if failure != nil {
			failure.Row = i + 1
			failure.Fields = append([]string(nil), row...)
			res.Skipped = append(res.Skipped, *failure)
			n.log.Debug("Row skipped",
				zap.Int("row", failure.Row),
				zap.String("reason", failure.Reason),
				zap.String("detail", failure.Detail))
			continue
		}

		rec.SeqID = nextID
		nextID++
		if rec.SubdivisionInferred {
			res.SubdivisionFallbacks++
		}
		res.Records = append(res.Records, rec)
		res.Partitions[rec.Region] = append(res.Partitions[rec.Region], rec)
	}

	n.log.Info("Rows normalized",
		zap.Int("loaded", len(res.Records)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("subdivision_fallbacks", res.SubdivisionFallbacks))

	return res, nil
}

func (n *Normalizer) normalizeRow(cols columns, row []string) (sales.Record, *RowFailure) {
	var rec sales.Record

	date, err := locale.ParseDate(cols.get(row, ColDate))
	if err != nil {
		return rec, &RowFailure{Reason: ReasonInvalidDate, Detail: err.Error()}
	}

	quantity, err := locale.ParseQuantity(cols.get(row, ColQuantity))
	if err != nil {
		return rec, &RowFailure{Reason: ReasonInvalidQuantity, Detail: err.Error()}
	}

	unitPrice, err := locale.ParseDecimal(cols.get(row, ColUnitPrice))
	if err != nil {
		return rec, &RowFailure{Reason: ReasonInvalidPrice, Detail: err.Error()}
	}

	profit, err := locale.ParseDecimal(cols.get(row, ColProfit))
	if err != nil {
		return rec, &RowFailure{Reason: ReasonInvalidProfit, Detail: err.Error()}
	}

	customer := cols.get(row, ColCustomer)
	if customer == "" {
		return rec, &RowFailure{Reason: ReasonMissingCustomer}
	}

	state := cols.get(row, ColState)
	tag, ok := resolveRegion(cols.get(row, ColRegion), state)
	if !ok {
		return rec, &RowFailure{
			Reason: ReasonUnresolvedRegion,
			Detail: "regiao=" + cols.get(row, ColRegion) + " estado=" + state,
		}
	}

	code, matched := subdivisionCode(state, tag)

	rec = sales.Record{
		Date:                date,
		Geo:                 parseGeo(cols.get(row, ColLatitude), cols.get(row, ColLongitude)),
		Customer:            customer,
		Region:              tag,
		SubdivisionCode:     code,
		SubdivisionName:     state,
		SubdivisionInferred: !matched,
		Product:             cols.get(row, ColProduct),
		Quantity:            quantity,
		UnitPrice:           unitPrice,
		TotalValue:          sales.TotalOf(quantity, unitPrice),
		Profit:              profit,
		Stock:               parseStock(cols.get(row, ColStock)),
	}

	if cnpj := cols.get(row, ColCNPJ); cnpj != "" {
		rec.FiscalID, rec.FiscalKind = cnpj, sales.FiscalCNPJ
	} else if cpf := cols.get(row, ColCPF); cpf != "" {
		rec.FiscalID, rec.FiscalKind = cpf, sales.FiscalCPF
	}

	return rec, nil
}

// resolveRegion tries the region column first and falls back to the region
// the state belongs to.
func resolveRegion(regionText, state string) (region.Tag, bool) {
	if tag, ok := region.Parse(regionText); ok {
		return tag, true
	}
	if code, ok := region.LookupSubdivision(state); ok {
		return region.RegionOf(code)
	}
	return "", false
}

func subdivisionCode(state string, tag region.Tag) (string, bool) {
	if code, ok := region.LookupSubdivision(state); ok {
		if r, _ := region.RegionOf(code); r == tag {
			return code, true
		}
	}
	return region.ResolveSubdivisionCode(state, tag)
}

func parseGeo(lat, lon string) *sales.GeoPoint {
	la, err := locale.ParseDecimal(lat)
	if err != nil || la < -90 || la > 90 {
		return nil
	}
	lo, err := locale.ParseDecimal(lon)
	if err != nil || lo < -180 || lo > 180 {
		return nil
	}
	return &sales.GeoPoint{Latitude: la, Longitude: lo}
}

func parseStock(text string) *int {
	if text == "" {
		return nil
	}
	v, err := locale.ParseQuantity(text)
	if err != nil {
		return nil
	}
	return &v
}
