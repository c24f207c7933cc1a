package sales

// LowStockThreshold is the stock level under which a product counts as low.
const LowStockThreshold = 10

// Summary holds the aggregate figures of one region.
type Summary struct {
	TotalValue        float64 `json:"total_value"`
	TotalQuantity     int     `json:"total_quantity"`
	MeanValue         float64 `json:"mean_value"`
	DistinctCustomers int     `json:"distinct_customers"`
	TotalProfit       float64 `json:"total_profit"`
	ProfitMargin      float64 `json:"profit_margin"`
	InventoryLevel    int     `json:"inventory_level"`
	LowStockProducts  int     `json:"low_stock_products"`
}

// Summarize aggregates records. An empty slice yields the zero Summary.
func Summarize(records []Record) Summary {
	var s Summary
	if len(records) == 0 {
		return s
	}

	customers := make(map[string]struct{})
	type stockAt struct {
		seq   int
		level int
	}
	stock := make(map[string]stockAt)

	for i := range records {
		r := &records[i]
		s.TotalValue += r.TotalValue
		s.TotalQuantity += r.Quantity
		s.TotalProfit += r.Profit
		customers[r.Customer] = struct{}{}

		if r.Stock != nil {
			if cur, ok := stock[r.Product]; !ok || r.SeqID > cur.seq {
				stock[r.Product] = stockAt{seq: r.SeqID, level: *r.Stock}
			}
		}
	}

	s.MeanValue = s.TotalValue / float64(len(records))
	s.DistinctCustomers = len(customers)
	if s.TotalValue > 0 {
		s.ProfitMargin = s.TotalProfit / s.TotalValue * 100
	}

	for _, st := range stock {
		s.InventoryLevel += st.level
		if st.level < LowStockThreshold {
			s.LowStockProducts++
		}
	}

	return s
}
