package engine

import (
	"github.com/michaelkernaghan/stockticker/internal/domain"
)

// StockState is the mutable market entry for one stock.
type StockState struct {
	Symbol domain.StockSymbol
	Price  domain.Cents
}

// Market maps every stock symbol to its current state. A market always
// holds exactly one entry per symbol.
type Market map[domain.StockSymbol]*StockState

// NewMarket returns a market with every stock at the starting price.
func NewMarket() Market {
	m := make(Market, len(domain.AllSymbols()))
	for _, sym := range domain.AllSymbols() {
		m[sym] = &StockState{Symbol: sym, Price: domain.StartPriceCents}
	}
	return m
}

// Player is one participant: a name, a cash balance, and per-stock share
// holdings. Holdings without an entry are implicitly zero; use Holding to
// read them.
type Player struct {
	Name     string
	Cash     domain.Cents
	Holdings map[domain.StockSymbol]int64
}

// NewPlayer creates a player with the given starting cash and no shares.
func NewPlayer(name string, cash domain.Cents) *Player {
	return &Player{
		Name:     name,
		Cash:     cash,
		Holdings: make(map[domain.StockSymbol]int64),
	}
}

// Holding returns the number of shares held in the given stock, zero when
// the player has never touched it.
func (p *Player) Holding(sym domain.StockSymbol) int64 {
	return p.Holdings[sym]
}

// NetWorth returns cash plus the market value of all holdings at current
// prices.
func (p *Player) NetWorth(market Market) domain.Cents {
	total := p.Cash
	for sym, shares := range p.Holdings {
		total += domain.Cents(shares) * market[sym].Price
	}
	return total
}
