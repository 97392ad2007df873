package dashboard

import (
	"fmt"
	"strings"

	"github.com/michaelkernaghan/stockticker/internal/domain"
	"github.com/michaelkernaghan/stockticker/internal/store"
)

// SymbolRollStats holds aggregated dice history for a single stock.
type SymbolRollStats struct {
	Symbol    domain.StockSymbol
	Rolls     int
	Ups       int
	Downs     int
	Dividends int
	NetMove   domain.Cents // up amounts minus down amounts
	High      domain.Cents // highest price seen after a roll
	Low       domain.Cents // lowest price seen after a roll
}

// AggregateRolls computes per-stock statistics from recorded rolls,
// returned in board order. Stocks that never came up are omitted, as
// are records whose symbol or action is not recognised.
func AggregateRolls(records []store.RollRecord) []SymbolRollStats {
	bySymbol := make(map[domain.StockSymbol]*SymbolRollStats)
	for _, r := range records {
		sym, err := domain.ParseStockSymbol(r.Symbol)
		if err != nil {
			continue
		}
		action, err := domain.ParseDieAction(r.Action)
		if err != nil {
			continue
		}

		s, ok := bySymbol[sym]
		if !ok {
			s = &SymbolRollStats{
				Symbol: sym,
				High:   domain.Cents(r.PriceCents),
				Low:    domain.Cents(r.PriceCents),
			}
			bySymbol[sym] = s
		}

		s.Rolls++
		switch action {
		case domain.ActionUp:
			s.Ups++
			s.NetMove += domain.Cents(r.AmountCents)
		case domain.ActionDown:
			s.Downs++
			s.NetMove -= domain.Cents(r.AmountCents)
		case domain.ActionDividend:
			s.Dividends++
		}
		price := domain.Cents(r.PriceCents)
		if price > s.High {
			s.High = price
		}
		if price < s.Low {
			s.Low = price
		}
	}

	var out []SymbolRollStats
	for _, sym := range domain.AllSymbols() {
		if s, ok := bySymbol[sym]; ok {
			out = append(out, *s)
		}
	}
	return out
}

// RollStatsTable renders aggregated dice history, one row per stock.
func RollStatsTable(stats []SymbolRollStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %6s %5s %5s %5s %10s %10s %10s\n",
		"Stock", "Rolls", "Up", "Down", "Div", "Net", "High", "Low")
	for _, s := range stats {
		fmt.Fprintf(&b, "%-12s %6d %5d %5d %5d %10s %10s %10s\n",
			s.Symbol.String(), s.Rolls, s.Ups, s.Downs, s.Dividends,
			s.NetMove, s.High, s.Low)
	}
	return b.String()
}

// HistoryTable renders recorded rolls in sequence order.
func HistoryTable(records []store.RollRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-5s %-12s %-10s %8s %10s\n",
		"#", "Stock", "Action", "Amount", "Price")
	for _, r := range records {
		fmt.Fprintf(&b, "%-5d %-12s %-10s %7d¢ %10s\n",
			r.Seq, r.Symbol, r.Action, r.AmountCents, domain.Cents(r.PriceCents))
	}
	return b.String()
}
