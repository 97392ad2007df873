package dashboard

import (
	"fmt"
	"strings"

	"github.com/michaelkernaghan/stockticker/internal/domain"
	"github.com/michaelkernaghan/stockticker/internal/engine"
)

// MarketTable renders every stock and its current price in board order.
func MarketTable(market engine.Market) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %10s\n", "Stock", "Price")
	for _, sym := range domain.AllSymbols() {
		fmt.Fprintf(&b, "%-12s %10s\n", sym.String(), market[sym].Price)
	}
	return b.String()
}

// StandingsTable renders the scoreboard, highest net worth first.
func StandingsTable(standings []engine.Standing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-4s %-20s %14s\n", "#", "Player", "Net Worth")
	for i, s := range standings {
		fmt.Fprintf(&b, "%-4d %-20s %14s\n", i+1, s.Name, s.NetWorth)
	}
	return b.String()
}

// PlayerTable renders each player's cash and holdings in join order.
func PlayerTable(players []*engine.Player, market engine.Market) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-4s %-20s %12s %14s\n", "#", "Player", "Cash", "Net Worth")
	for i, p := range players {
		fmt.Fprintf(&b, "%-4d %-20s %12s %14s\n", i, p.Name, p.Cash, p.NetWorth(market))
		for _, sym := range domain.AllSymbols() {
			if shares := p.Holding(sym); shares > 0 {
				fmt.Fprintf(&b, "     %-20s %12s\n", sym.String(), FormatShares(shares))
			}
		}
	}
	return b.String()
}

// StatusLine summarises the game for the prompt: roll count, last roll,
// trading phase, and rolls until the next automatic reopening.
func StatusLine(g *engine.Game) string {
	phase := "closed"
	if g.InTradingPhase() {
		phase = "open"
	}
	line := fmt.Sprintf("roll %d | trading %s", g.RollCount(), phase)
	if last := g.LastRoll(); last != nil {
		line += " | last: " + last.String()
	}
	if rem, ok := g.RollsUntilNextTrading(); ok {
		line += fmt.Sprintf(" | next trading in %d", rem)
	}
	return line
}
