// Package engine implements the stock ticker game state machine: dice-roll
// resolution, splits, bankruptcies, dividends, the trading-phase gate, and
// block trade execution against a shared market.
package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/michaelkernaghan/stockticker/internal/domain"
	"github.com/michaelkernaghan/stockticker/internal/random"
)

// Trade validation errors. All of them leave the game untouched.
var (
	ErrInvalidBlockSize   = errors.New("share count is not an allowed block size")
	ErrInsufficientFunds  = errors.New("insufficient cash for purchase")
	ErrInsufficientShares = errors.New("insufficient shares to sell")
	ErrNoSuchPlayer       = errors.New("player index out of range")
)

// GameConfig holds the tunable rules of a game. It is fixed at game
// creation except for TradingIntervalRolls, which the host settings
// surface may change mid-game via SetTradingInterval.
type GameConfig struct {
	// StartingCash is the cash each player begins with.
	StartingCash domain.Cents

	// TradingIntervalRolls is how many rolls pass before a trading phase
	// reopens automatically. Zero disables automatic reopening.
	TradingIntervalRolls int

	// BlockSizes are the only share quantities a trade may use.
	BlockSizes []int64

	// Seed, when set, makes the dice sequence reproducible. Applied once,
	// at game creation.
	Seed *int64
}

// DefaultConfig returns the standard rules: $5000.00 starting cash, a
// trading phase after every roll, and the default block sizes.
func DefaultConfig() GameConfig {
	return GameConfig{
		StartingCash:         domain.DefaultStartingCashCents,
		TradingIntervalRolls: 1,
		BlockSizes:           append([]int64(nil), domain.DefaultBlockSizes...),
	}
}

// withDefaults fills unset fields that have no meaningful zero value.
// TradingIntervalRolls is left alone: zero means "never reopen".
func (c GameConfig) withDefaults() GameConfig {
	if c.StartingCash == 0 {
		c.StartingCash = domain.DefaultStartingCashCents
	}
	if len(c.BlockSizes) == 0 {
		c.BlockSizes = append([]int64(nil), domain.DefaultBlockSizes...)
	}
	return c
}

// Standing is one row of the scoreboard.
type Standing struct {
	Name     string
	NetWorth domain.Cents
}

// Game is the aggregate root of a running game. All operations take a
// single mutex over the whole aggregate; one roll can touch every player
// and every market entry, so nothing finer-grained is meaningful.
type Game struct {
	mu sync.Mutex

	players        []*Player
	market         Market
	config         GameConfig
	rollCount      int
	lastRoll       *domain.Roll
	inTradingPhase bool
	log            []string

	rng *rand.Rand
}

// New creates a game from a list of player names. Names are trimmed and
// blank entries dropped. A nil cfg uses DefaultConfig. The game owns its
// random source, seeded once here: from cfg.Seed when set, otherwise from
// crypto/rand.
func New(playerNames []string, cfg *GameConfig) (*Game, error) {
	config := DefaultConfig()
	if cfg != nil {
		config = cfg.withDefaults()
	}

	seed := int64(0)
	if config.Seed != nil {
		seed = *config.Seed
	} else {
		s, err := random.NewSeed()
		if err != nil {
			return nil, fmt.Errorf("seeding game: %w", err)
		}
		seed = s
	}

	var players []*Player
	for _, name := range playerNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		players = append(players, NewPlayer(name, config.StartingCash))
	}

	g := &Game{
		players:        players,
		market:         NewMarket(),
		config:         config,
		inTradingPhase: true,
		rng:            rand.New(rand.NewSource(seed)),
	}

	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	g.log = append(g.log, "New game created. Players: "+strings.Join(names, ", "))

	return g, nil
}

// ---------------------------------------------------------------------------
// Dice
// ---------------------------------------------------------------------------

// RollDice produces one roll, chosen uniformly and independently across
// the stock, action, and amount sets. It has no side effects beyond
// advancing the game's random source; ApplyRoll is what mutates state.
func (g *Game) RollDice() domain.Roll {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rollDice()
}

func (g *Game) rollDice() domain.Roll {
	symbols := domain.AllSymbols()
	actions := domain.AllActions()
	steps := domain.StepValuesCents
	return domain.Roll{
		Symbol: symbols[g.rng.Intn(len(symbols))],
		Action: actions[g.rng.Intn(len(actions))],
		Amount: steps[g.rng.Intn(len(steps))],
	}
}

// ApplyRoll resolves one roll against the market and players. A nil roll
// is generated with the game's dice; callers may supply their own for
// scripted scenarios. The returned Roll is the one that was applied.
//
// Resolution order is fixed: record the roll, dispatch the action (with
// the split check after Up and the bankruptcy check after Down), bump the
// roll counter, then reopen the trading phase if the counter hit the
// configured cadence.
func (g *Game) ApplyRoll(roll *domain.Roll) domain.Roll {
	g.mu.Lock()
	defer g.mu.Unlock()

	var r domain.Roll
	if roll != nil {
		r = *roll
	} else {
		r = g.rollDice()
	}
	g.lastRoll = &r

	stock := g.market[r.Symbol]
	before := stock.Price

	switch r.Action {
	case domain.ActionUp:
		stock.Price += r.Amount
		g.logf("Roll: %s Up %d¢ => %s -> %s", r.Symbol, r.Amount, before, stock.Price)
		g.checkSplit(r.Symbol)
	case domain.ActionDown:
		stock.Price -= r.Amount
		g.logf("Roll: %s Down %d¢ => %s -> %s", r.Symbol, r.Amount, before, stock.Price)
		g.checkBankrupt(r.Symbol)
	case domain.ActionDividend:
		g.payDividend(r.Symbol, r.Amount)
	}

	g.rollCount++
	interval := g.config.TradingIntervalRolls
	if interval > 0 && g.rollCount%interval == 0 {
		g.inTradingPhase = true
		g.log = append(g.log, "Trading phase opened.")
	}

	return r
}

// checkSplit doubles every positive holding and resets the price when an
// upward move drove it to the split threshold or beyond. Players holding
// nothing stay at nothing.
func (g *Game) checkSplit(sym domain.StockSymbol) {
	stock := g.market[sym]
	if stock.Price < domain.SplitPriceCents {
		return
	}
	for _, p := range g.players {
		if p.Holding(sym) > 0 {
			p.Holdings[sym] *= 2
		}
	}
	g.logf("Split: %s split at %s. Shares doubled for holders; price reset to %s",
		sym, stock.Price, domain.StartPriceCents)
	stock.Price = domain.StartPriceCents
}

// checkBankrupt wipes every holding and resets the price when a downward
// move drove it to zero or below.
func (g *Game) checkBankrupt(sym domain.StockSymbol) {
	stock := g.market[sym]
	if stock.Price > domain.BankruptPriceCents {
		return
	}
	for _, p := range g.players {
		if p.Holding(sym) > 0 {
			p.Holdings[sym] = 0
		}
	}
	g.logf("Bankrupt: %s hit $0.00. All shares lost; price reset to %s",
		sym, domain.StartPriceCents)
	stock.Price = domain.StartPriceCents
}

// payDividend pays amount per share to every holder, but only while the
// stock trades at or above par.
func (g *Game) payDividend(sym domain.StockSymbol, amount domain.Cents) {
	stock := g.market[sym]
	if stock.Price < domain.StartPriceCents {
		g.logf("Dividend: %s below $1.00, no dividend paid", sym)
		return
	}
	paid := domain.Cents(0)
	for _, p := range g.players {
		shares := p.Holding(sym)
		if shares > 0 {
			p.Cash += amount * domain.Cents(shares)
			paid += amount * domain.Cents(shares)
		}
	}
	g.logf("Dividend: %s pays %d¢/share; total paid %s", sym, amount, paid)
}

// ---------------------------------------------------------------------------
// Trading
// ---------------------------------------------------------------------------

// Buy purchases a block of shares at the current market price. The share
// count must exactly match a configured block size and the player must be
// able to afford the whole block. Failures mutate nothing.
//
// Buy does not consult the trading-phase gate; whether trades are allowed
// while the phase is closed is the caller's policy.
func (g *Game) Buy(playerIndex int, sym domain.StockSymbol, shares int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.allowedBlock(shares) {
		return ErrInvalidBlockSize
	}
	if playerIndex < 0 || playerIndex >= len(g.players) {
		return ErrNoSuchPlayer
	}
	player := g.players[playerIndex]
	price := g.market[sym].Price
	cost := price * domain.Cents(shares)
	if player.Cash < cost {
		return ErrInsufficientFunds
	}

	player.Cash -= cost
	player.Holdings[sym] += shares
	g.logf("Trade: %s bought %d %s @ %s for %s", player.Name, shares, sym, price, cost)
	return nil
}

// Sell sells a block of shares at the current market price. The share
// count must exactly match a configured block size and the player must
// hold at least the whole block. Failures mutate nothing.
//
// Like Buy, Sell does not consult the trading-phase gate.
func (g *Game) Sell(playerIndex int, sym domain.StockSymbol, shares int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.allowedBlock(shares) {
		return ErrInvalidBlockSize
	}
	if playerIndex < 0 || playerIndex >= len(g.players) {
		return ErrNoSuchPlayer
	}
	player := g.players[playerIndex]
	if player.Holding(sym) < shares {
		return ErrInsufficientShares
	}
	price := g.market[sym].Price
	proceeds := price * domain.Cents(shares)

	player.Holdings[sym] -= shares
	player.Cash += proceeds
	g.logf("Trade: %s sold %d %s @ %s for %s", player.Name, shares, sym, price, proceeds)
	return nil
}

func (g *Game) allowedBlock(shares int64) bool {
	for _, b := range g.config.BlockSizes {
		if shares == b {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Trading phase
// ---------------------------------------------------------------------------

// EndTradingPhase closes the trading window. The engine never closes it on
// its own; rolling only reopens it per the configured cadence.
func (g *Game) EndTradingPhase() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inTradingPhase = false
	g.log = append(g.log, "Trading phase ended.")
}

// SetTradingInterval changes how many rolls pass before the trading phase
// reopens. Zero disables automatic reopening.
func (g *Game) SetTradingInterval(rolls int) error {
	if rolls < 0 {
		return fmt.Errorf("trading interval must be non-negative, got %d", rolls)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.config.TradingIntervalRolls = rolls
	return nil
}

// RollsUntilNextTrading reports how many rolls remain until the trading
// phase reopens automatically. ok is false when automatic reopening is
// disabled. Zero with ok true means the counter is exactly on a boundary.
func (g *Game) RollsUntilNextTrading() (remaining int, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	interval := g.config.TradingIntervalRolls
	if interval <= 0 {
		return 0, false
	}
	rem := interval - g.rollCount%interval
	if rem == interval {
		return 0, true
	}
	return rem, true
}

// ---------------------------------------------------------------------------
// Read access
// ---------------------------------------------------------------------------

// Standings returns all players ranked by net worth, highest first. Ties
// keep join order. Pure read.
func (g *Game) Standings() []Standing {
	g.mu.Lock()
	defer g.mu.Unlock()

	standings := make([]Standing, len(g.players))
	for i, p := range g.players {
		standings[i] = Standing{Name: p.Name, NetWorth: p.NetWorth(g.market)}
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].NetWorth > standings[j].NetWorth
	})
	return standings
}

// Players returns the roster in join order. Callers must treat the result
// as read-only; all mutation goes through engine operations.
func (g *Game) Players() []*Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.players
}

// Market returns the live market. Read-only for callers.
func (g *Game) Market() Market {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.market
}

// Config returns a copy of the current rules.
func (g *Game) Config() GameConfig {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.config
}

// RollCount returns how many rolls have been resolved.
func (g *Game) RollCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rollCount
}

// LastRoll returns a copy of the most recent roll, or nil before the first.
func (g *Game) LastRoll() *domain.Roll {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastRoll == nil {
		return nil
	}
	r := *g.lastRoll
	return &r
}

// InTradingPhase reports whether the trading window is open.
func (g *Game) InTradingPhase() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inTradingPhase
}

// Log returns the game's event log, oldest first. Read-only for callers.
func (g *Game) Log() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.log
}

func (g *Game) logf(format string, args ...any) {
	g.log = append(g.log, fmt.Sprintf(format, args...))
}

// ---------------------------------------------------------------------------
// Restore
// ---------------------------------------------------------------------------

// GameData is the full observable state of a game, used by the snapshot
// codec to capture and rebuild games.
type GameData struct {
	Players        []*Player
	Market         Market
	Config         GameConfig
	RollCount      int
	LastRoll       *domain.Roll
	InTradingPhase bool
	Log            []string
}

// Data captures the game's current state. The returned structure shares
// memory with the game; treat it as read-only.
func (g *Game) Data() GameData {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GameData{
		Players:        g.players,
		Market:         g.market,
		Config:         g.config,
		RollCount:      g.rollCount,
		LastRoll:       g.lastRoll,
		InTradingPhase: g.inTradingPhase,
		Log:            g.log,
	}
}

// Restore rebuilds a game from previously captured state. Market entries
// absent from data are created at the starting price, and players without
// a holdings map get an empty one. The restored game receives a fresh
// random source (the config seed when present, crypto/rand otherwise);
// dice position is not part of a snapshot.
func Restore(data GameData) (*Game, error) {
	config := data.Config.withDefaults()

	seed := int64(0)
	if config.Seed != nil {
		seed = *config.Seed
	} else {
		s, err := random.NewSeed()
		if err != nil {
			return nil, fmt.Errorf("seeding restored game: %w", err)
		}
		seed = s
	}

	market := data.Market
	if market == nil {
		market = make(Market, len(domain.AllSymbols()))
	}
	for _, sym := range domain.AllSymbols() {
		if _, ok := market[sym]; !ok {
			market[sym] = &StockState{Symbol: sym, Price: domain.StartPriceCents}
		}
	}

	for _, p := range data.Players {
		if p.Holdings == nil {
			p.Holdings = make(map[domain.StockSymbol]int64)
		}
	}

	return &Game{
		players:        data.Players,
		market:         market,
		config:         config,
		rollCount:      data.RollCount,
		lastRoll:       data.LastRoll,
		inTradingPhase: data.InTradingPhase,
		log:            data.Log,
		rng:            rand.New(rand.NewSource(seed)),
	}, nil
}
