// Package domain defines the core types of the stock ticker board game:
// the fixed set of tradable stocks, the die actions, money amounts, and
// the rule constants shared by the engine and its collaborators.
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Money
// ---------------------------------------------------------------------------

// Cents is a money amount in minor currency units. All prices, balances,
// and payouts in the game are exact integer cents.
type Cents int64

// String renders the amount as dollars, e.g. Cents(12345) -> "$123.45".
func (c Cents) String() string {
	return "$" + decimal.New(int64(c), -2).StringFixed(2)
}

// ---------------------------------------------------------------------------
// Stock symbols
// ---------------------------------------------------------------------------

// StockSymbol identifies one of the six tradable stocks. The set is closed
// and the order is the canonical board order.
type StockSymbol int

const (
	Gold StockSymbol = iota
	Silver
	Bonds
	Oil
	Industrials
	Grain
)

// AllSymbols returns every stock symbol in board order.
func AllSymbols() []StockSymbol {
	return []StockSymbol{Gold, Silver, Bonds, Oil, Industrials, Grain}
}

var symbolNames = map[StockSymbol]string{
	Gold:        "GOLD",
	Silver:      "SILVER",
	Bonds:       "BONDS",
	Oil:         "OIL",
	Industrials: "INDUSTRIALS",
	Grain:       "GRAIN",
}

var symbolLabels = map[StockSymbol]string{
	Gold:        "Gold",
	Silver:      "Silver",
	Bonds:       "Bonds",
	Oil:         "Oil",
	Industrials: "Industrials",
	Grain:       "Grain",
}

// Name returns the stable wire identifier used in snapshots, e.g. "GOLD".
// Snapshots persist names rather than numeric indices so that saved games
// survive reordering of the enumeration.
func (s StockSymbol) Name() string {
	if n, ok := symbolNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// String returns the human-readable label, e.g. "Gold".
func (s StockSymbol) String() string {
	if l, ok := symbolLabels[s]; ok {
		return l
	}
	return "Unknown"
}

// ParseStockSymbol maps a wire name back to its symbol.
func ParseStockSymbol(name string) (StockSymbol, error) {
	for sym, n := range symbolNames {
		if n == name {
			return sym, nil
		}
	}
	return 0, fmt.Errorf("unknown stock symbol %q", name)
}

// ---------------------------------------------------------------------------
// Die actions
// ---------------------------------------------------------------------------

// DieAction is the face of the action die: a price move up, a price move
// down, or a dividend. The set is closed; roll resolution dispatches on it
// exhaustively.
type DieAction int

const (
	ActionUp DieAction = iota
	ActionDown
	ActionDividend
)

// AllActions returns every die action.
func AllActions() []DieAction {
	return []DieAction{ActionUp, ActionDown, ActionDividend}
}

// String returns the action name as it appears on the die and in snapshots.
func (a DieAction) String() string {
	switch a {
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionDividend:
		return "Dividend"
	default:
		return "Unknown"
	}
}

// ParseDieAction maps an action name back to its DieAction.
func ParseDieAction(name string) (DieAction, error) {
	switch name {
	case "Up":
		return ActionUp, nil
	case "Down":
		return ActionDown, nil
	case "Dividend":
		return ActionDividend, nil
	default:
		return 0, fmt.Errorf("unknown die action %q", name)
	}
}

// ---------------------------------------------------------------------------
// Rolls
// ---------------------------------------------------------------------------

// Roll is one resolved throw of the three dice: which stock, what happens
// to it, and by how much.
type Roll struct {
	Symbol StockSymbol
	Action DieAction
	Amount Cents
}

// String renders the roll for status displays, e.g. "Gold Up 20¢".
func (r Roll) String() string {
	return fmt.Sprintf("%s %s %d¢", r.Symbol, r.Action, r.Amount)
}

// ---------------------------------------------------------------------------
// Rule constants
// ---------------------------------------------------------------------------

const (
	// StartPriceCents is the par price every stock opens at, returns to
	// after a split or bankruptcy, and the floor for dividend payouts.
	StartPriceCents Cents = 100

	// SplitPriceCents is the threshold at or above which an upward move
	// triggers a stock split.
	SplitPriceCents Cents = 200

	// BankruptPriceCents is the threshold at or below which a downward
	// move wipes out the stock.
	BankruptPriceCents Cents = 0

	// DefaultStartingCashCents is the cash each player begins with.
	DefaultStartingCashCents Cents = 5000 * 100
)

// StepValuesCents are the amounts printed on the amount die.
var StepValuesCents = []Cents{5, 10, 20}

// DefaultBlockSizes are the share quantities a trade must exactly match.
var DefaultBlockSizes = []int64{500, 1000, 2000, 5000}
