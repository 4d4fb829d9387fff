// Package presenter renders domain values as transport-neutral maps.
// Maps only hold the value types google.protobuf.Struct accepts, so both the
// gRPC and HTTP adapters can send them unchanged.
package presenter

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/assetflow-backend/internal/domain"
	"github.com/simaogato/assetflow-backend/internal/format"
	"github.com/simaogato/assetflow-backend/internal/usecase/dashboard"
	"github.com/simaogato/assetflow-backend/internal/usecase/history"
	"github.com/simaogato/assetflow-backend/internal/usecase/stocktake"
)

// M is a response body
type M = map[string]interface{}

func amount(d decimal.Decimal) string {
	return d.String()
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Holding renders one holding
func Holding(h *domain.Holding) M {
	m := M{
		"id":                  h.ID.String(),
		"kind":                string(h.Kind),
		"kind_label":          h.Kind.DisplayName(),
		"name":                h.Name,
		"amount":              amount(h.Amount),
		"amount_display":      format.FormatDecimal(h.Amount),
		"annual_rate_percent": amount(h.AnnualRatePercent),
		"created_at":          timestamp(h.CreatedAt),
		"updated_at":          timestamp(h.UpdatedAt),
	}
	if h.Memo != nil {
		m["memo"] = *h.Memo
	}
	return m
}

// Snapshot renders the grouped holdings with per-kind totals and shares
func Snapshot(s *domain.AggregateSnapshot) M {
	byKind := M{}
	totals := M{}
	shares := M{}
	for _, kind := range domain.Kinds {
		list := make([]interface{}, 0, len(s.ByKind[kind]))
		for _, h := range s.ByKind[kind] {
			item := Holding(h)
			item["share_percent"] = s.Share(h.Amount)
			list = append(list, item)
		}
		byKind[string(kind)] = list
		totals[string(kind)] = amount(s.TotalsByKind[kind])
		shares[string(kind)] = s.Share(s.TotalsByKind[kind])
	}

	return M{
		"holdings_by_kind":    byKind,
		"totals_by_kind":      totals,
		"share_by_kind":       shares,
		"grand_total":         amount(s.GrandTotal),
		"grand_total_display": format.FormatDecimal(s.GrandTotal),
		"empty":               s.Empty(),
	}
}

// Projection renders a projection result
func Projection(r domain.ProjectionResult) M {
	return M{
		"principal":               amount(r.Principal),
		"annual_rate_percent":     amount(r.AnnualRatePercent),
		"years":                   r.Years,
		"future_value":            amount(r.FutureValue),
		"future_value_display":    format.FormatDecimal(r.FutureValue),
		"increase_amount":         amount(r.IncreaseAmount),
		"increase_amount_display": format.FormatSigned(r.IncreaseAmount),
	}
}

// Summary renders the dashboard summary
func Summary(s *dashboard.SummaryResult) M {
	return M{
		"total":       amount(s.Total),
		"cash":        amount(s.Cash),
		"stock":       amount(s.Stock),
		"cash_share":  s.CashShare,
		"stock_share": s.StockShare,
		"projection":  Projection(s.Projection),
	}
}

// Record renders a history record and, when loaded, its details
func Record(r *domain.HistoryRecord) M {
	m := M{
		"id":                  r.ID.String(),
		"current_assets":      amount(r.CurrentAssets),
		"annual_rate_percent": r.AnnualRatePercent.StringFixed(2),
		"years":               r.Years,
		"future_value":        amount(r.FutureValue),
		"increase_amount":     amount(r.IncreaseAmount),
		"created_at":          timestamp(r.CreatedAt),
	}
	if r.Details != nil {
		details := make([]interface{}, 0, len(r.Details))
		for _, d := range r.Details {
			details = append(details, M{
				"asset_id":            d.AssetID.String(),
				"asset_name":          d.AssetName,
				"asset_kind":          string(d.AssetKind),
				"original_amount":     amount(d.OriginalAmount),
				"adjusted_amount":     amount(d.AdjustedAmount),
				"difference":          amount(d.AdjustedAmount.Sub(d.OriginalAmount)),
				"annual_rate_percent": amount(d.AnnualRatePercent),
				"future_value":        amount(d.FutureValue),
				"increase_amount":     amount(d.IncreaseAmount),
			})
		}
		m["details"] = details
	}
	return m
}

// HistoryGroups renders records grouped by month, most recent month first
func HistoryGroups(records []*domain.HistoryRecord, now time.Time) M {
	groups := history.GroupByMonth(records, now)
	out := make([]interface{}, 0, len(groups))
	for _, g := range groups {
		items := make([]interface{}, 0, len(g.Records))
		for _, r := range g.Records {
			items = append(items, Record(r))
		}
		out = append(out, M{"label": g.Label, "records": items})
	}
	return M{"groups": out}
}

// Line renders one stock-take line
func Line(l stocktake.Line) M {
	return M{
		"holding_id":         l.Holding.ID.String(),
		"name":               l.Holding.Name,
		"kind":               string(l.Holding.Kind),
		"original_amount":    amount(l.OriginalAmount),
		"adjusted_amount":    amount(l.AdjustedAmount),
		"difference":         amount(l.Difference),
		"difference_display": format.FormatSigned(l.Difference),
		"difference_percent": l.DifferencePercent.StringFixed(1),
		"touched":            l.Touched(),
	}
}

// Totals renders stock-take totals
func Totals(t stocktake.Totals) M {
	return M{
		"original_total":        amount(t.OriginalTotal),
		"adjusted_total":        amount(t.AdjustedTotal),
		"original_future_value": amount(t.OriginalFutureValue),
		"adjusted_future_value": amount(t.AdjustedFutureValue),
		"total_difference":      amount(t.TotalDifference),
		"future_difference":     amount(t.FutureDifference),
	}
}

// StockTake renders an open session
func StockTake(c *stocktake.Coordinator) (M, error) {
	totals, err := c.ComputeTotals()
	if err != nil {
		return nil, err
	}

	lines := c.Lines()
	items := make([]interface{}, 0, len(lines))
	for _, l := range lines {
		items = append(items, Line(l))
	}

	return M{
		"state":  c.State().String(),
		"dirty":  c.Dirty(),
		"years":  c.Years(),
		"lines":  items,
		"totals": Totals(totals),
	}, nil
}

// SaveResult renders a completed stock-take save
func SaveResult(r *stocktake.SaveResult) M {
	updated := make([]interface{}, 0, len(r.Updated))
	for _, id := range r.Updated {
		updated = append(updated, id.String())
	}
	return M{
		"totals":        Totals(r.Totals),
		"weighted_rate": r.WeightedRate.StringFixed(2),
		"updated":       updated,
		"record":        Record(r.Record),
	}
}
