package query

import (
	"fmt"
	"strings"

	"github.com/codesellers/backend/internal/ranking"
	"github.com/codesellers/backend/internal/region"
)

const (
	contextPreamble = "Você é um assistente de análise de vendas. Responda usando apenas os " +
		"registros de vendas abaixo, agrupados por região e ordenados por relevância."
	contextSeparator = "\n---\n"
	noRecordsLine    = "Nenhum registro de venda disponível."
)

// AssembleContext renders ranked records as the text block handed to the
// answering model: the preamble, one section per region in catalog order,
// then the separator and the question. It does no selection of its own.
func AssembleContext(results []ranking.Result, question string) string {
	var b strings.Builder
	b.WriteString(contextPreamble)
	b.WriteString("\n")

	if len(results) == 0 {
		b.WriteString("\n")
		b.WriteString(noRecordsLine)
		b.WriteString("\n")
	}

	groups := make(map[region.Tag][]ranking.Result)
	for _, r := range results {
		groups[r.Record.Region] = append(groups[r.Record.Region], r)
	}

	for _, tag := range region.Tags() {
		group := groups[tag]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\nRegião: %s\n", tag)
		for _, r := range group {
			writeRecordLine(&b, r)
		}
	}

	b.WriteString(contextSeparator)
	b.WriteString("Pergunta: ")
	b.WriteString(question)
	return b.String()
}

func writeRecordLine(b *strings.Builder, r ranking.Result) {
	rec := r.Record
	fmt.Fprintf(b, "- [#%d] Data: %s | Cliente: %s | Estado: %s (%s) | Produto: %s | Quantidade: %d | Preço unitário: %.2f | Valor total: %.2f | Lucro: %.2f",
		rec.SeqID,
		rec.Date,
		rec.Customer,
		rec.SubdivisionName,
		rec.SubdivisionCode,
		rec.Product,
		rec.Quantity,
		rec.UnitPrice,
		rec.TotalValue,
		rec.Profit,
	)
	if rec.Stock != nil {
		fmt.Fprintf(b, " | Estoque: %d", *rec.Stock)
	}
	b.WriteString("\n")
}
