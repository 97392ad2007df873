// Package snapshot serializes games to a flat JSON document and rebuilds
// them. A snapshot captures every observable field of the game; the dice
// position is deliberately excluded, so a resumed game continues with a
// fresh sequence from its configured seed.
//
// Enumerated identities (stocks, die actions) are persisted by their
// stable names rather than numeric indices, keeping old saves loadable if
// the enumeration order ever changes.
package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/michaelkernaghan/stockticker/internal/domain"
	"github.com/michaelkernaghan/stockticker/internal/engine"
)

type playerJSON struct {
	// Name and CashCents are pointers so a missing field is
	// distinguishable from a zero value and can be rejected.
	Name      *string          `json:"name"`
	CashCents *int64           `json:"cash_cents"`
	Holdings  map[string]int64 `json:"holdings"`
}

type stockJSON struct {
	Symbol     string `json:"symbol"`
	PriceCents *int64 `json:"price_cents"`
}

type configJSON struct {
	StartingCashCents    int64   `json:"starting_cash_cents"`
	TradingIntervalRolls int     `json:"trading_interval_rolls"`
	BlockSizes           []int64 `json:"block_sizes"`
	Seed                 *int64  `json:"seed"`
}

type gameJSON struct {
	Players        []playerJSON         `json:"players"`
	Market         map[string]stockJSON `json:"market"`
	Config         *configJSON          `json:"config"`
	RollCount      int                  `json:"roll_count"`
	LastRoll       json.RawMessage      `json:"last_roll"`
	InTradingPhase *bool                `json:"in_trading_phase"`
	Log            []string             `json:"log"`
}

// Marshal serializes the game's full state as indented JSON.
func Marshal(g *engine.Game) ([]byte, error) {
	data := g.Data()

	doc := gameJSON{
		RollCount: data.RollCount,
		Log:       data.Log,
	}
	if doc.Log == nil {
		doc.Log = []string{}
	}

	doc.Players = make([]playerJSON, len(data.Players))
	for i, p := range data.Players {
		name := p.Name
		cash := int64(p.Cash)
		holdings := make(map[string]int64, len(p.Holdings))
		for sym, shares := range p.Holdings {
			holdings[sym.Name()] = shares
		}
		doc.Players[i] = playerJSON{Name: &name, CashCents: &cash, Holdings: holdings}
	}

	doc.Market = make(map[string]stockJSON, len(data.Market))
	for sym, stock := range data.Market {
		price := int64(stock.Price)
		doc.Market[sym.Name()] = stockJSON{Symbol: sym.Name(), PriceCents: &price}
	}

	doc.Config = &configJSON{
		StartingCashCents:    int64(data.Config.StartingCash),
		TradingIntervalRolls: data.Config.TradingIntervalRolls,
		BlockSizes:           data.Config.BlockSizes,
		Seed:                 data.Config.Seed,
	}

	if data.LastRoll != nil {
		r := data.LastRoll
		raw, err := json.Marshal([]any{r.Symbol.Name(), r.Action.String(), int64(r.Amount)})
		if err != nil {
			return nil, fmt.Errorf("encoding last roll: %w", err)
		}
		doc.LastRoll = raw
	} else {
		doc.LastRoll = json.RawMessage("null")
	}

	inPhase := data.InTradingPhase
	doc.InTradingPhase = &inPhase

	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal rebuilds a game from a snapshot produced by Marshal. Malformed
// payloads are rejected with a descriptive error and nothing is built.
// Missing optional fields default as at game creation: roll_count 0,
// in_trading_phase true, log empty, last_roll absent, config defaults.
func Unmarshal(data []byte) (*engine.Game, error) {
	var doc gameJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	if doc.Players == nil {
		return nil, fmt.Errorf("snapshot has no players list")
	}
	if doc.Market == nil {
		return nil, fmt.Errorf("snapshot has no market")
	}

	players := make([]*engine.Player, len(doc.Players))
	for i, pj := range doc.Players {
		if pj.Name == nil {
			return nil, fmt.Errorf("player %d: missing name", i)
		}
		if pj.CashCents == nil {
			return nil, fmt.Errorf("player %d (%s): missing cash_cents", i, *pj.Name)
		}
		p := engine.NewPlayer(*pj.Name, domain.Cents(*pj.CashCents))
		for name, shares := range pj.Holdings {
			sym, err := domain.ParseStockSymbol(name)
			if err != nil {
				return nil, fmt.Errorf("player %d (%s) holdings: %w", i, *pj.Name, err)
			}
			p.Holdings[sym] = shares
		}
		players[i] = p
	}

	market := engine.NewMarket()
	for name, sj := range doc.Market {
		sym, err := domain.ParseStockSymbol(name)
		if err != nil {
			return nil, fmt.Errorf("market: %w", err)
		}
		if sj.PriceCents == nil {
			return nil, fmt.Errorf("market %s: missing price_cents", name)
		}
		market[sym].Price = domain.Cents(*sj.PriceCents)
	}

	config := engine.DefaultConfig()
	if doc.Config != nil {
		config = engine.GameConfig{
			StartingCash:         domain.Cents(doc.Config.StartingCashCents),
			TradingIntervalRolls: doc.Config.TradingIntervalRolls,
			BlockSizes:           doc.Config.BlockSizes,
			Seed:                 doc.Config.Seed,
		}
	}

	lastRoll, err := decodeLastRoll(doc.LastRoll)
	if err != nil {
		return nil, err
	}

	inTradingPhase := true
	if doc.InTradingPhase != nil {
		inTradingPhase = *doc.InTradingPhase
	}

	log := doc.Log
	if log == nil {
		log = []string{}
	}

	return engine.Restore(engine.GameData{
		Players:        players,
		Market:         market,
		Config:         config,
		RollCount:      doc.RollCount,
		LastRoll:       lastRoll,
		InTradingPhase: inTradingPhase,
		Log:            log,
	})
}

// decodeLastRoll parses the [symbol, action, amount] tuple, or returns nil
// for an absent or null value.
func decodeLastRoll(raw json.RawMessage) (*domain.Roll, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return nil, fmt.Errorf("parsing last_roll: %w", err)
	}
	if len(parts) != 3 {
		return nil, fmt.Errorf("last_roll must have 3 elements, got %d", len(parts))
	}

	var symName, actionName string
	var amount int64
	if err := json.Unmarshal(parts[0], &symName); err != nil {
		return nil, fmt.Errorf("last_roll symbol: %w", err)
	}
	if err := json.Unmarshal(parts[1], &actionName); err != nil {
		return nil, fmt.Errorf("last_roll action: %w", err)
	}
	if err := json.Unmarshal(parts[2], &amount); err != nil {
		return nil, fmt.Errorf("last_roll amount: %w", err)
	}

	sym, err := domain.ParseStockSymbol(symName)
	if err != nil {
		return nil, fmt.Errorf("last_roll: %w", err)
	}
	action, err := domain.ParseDieAction(actionName)
	if err != nil {
		return nil, fmt.Errorf("last_roll: %w", err)
	}

	return &domain.Roll{Symbol: sym, Action: action, Amount: domain.Cents(amount)}, nil
}
