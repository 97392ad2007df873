package snapshot

import (
	"strings"
	"testing"

	"github.com/michaelkernaghan/stockticker/internal/domain"
	"github.com/michaelkernaghan/stockticker/internal/engine"
)

func newGame(t *testing.T) *engine.Game {
	t.Helper()
	seed := int64(99)
	cfg := engine.DefaultConfig()
	cfg.TradingIntervalRolls = 3
	cfg.Seed = &seed
	g, err := engine.New([]string{"alice", "bob"}, &cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestRoundTripFreshGame(t *testing.T) {
	g := newGame(t)

	data, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	restored, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if restored.LastRoll() != nil {
		t.Error("fresh game should round-trip a nil last roll")
	}
	if restored.RollCount() != 0 {
		t.Errorf("roll count = %d, want 0", restored.RollCount())
	}
	if !restored.InTradingPhase() {
		t.Error("fresh game should round-trip with trading open")
	}
	assertGamesEqual(t, g, restored)
}

func TestRoundTripPlayedGame(t *testing.T) {
	g := newGame(t)

	if err := g.Buy(0, domain.Gold, 1000); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if err := g.Sell(0, domain.Gold, 500); err != nil {
		t.Fatalf("Sell: %v", err)
	}
	for i := 0; i < 7; i++ {
		g.ApplyRoll(nil)
	}
	g.EndTradingPhase()

	data, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	restored, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	assertGamesEqual(t, g, restored)

	// A second round trip through the restored game must be stable.
	data2, err := Marshal(restored)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if string(data) != string(data2) {
		t.Error("snapshot is not stable across a round trip")
	}
}

func assertGamesEqual(t *testing.T, want, got *engine.Game) {
	t.Helper()

	wp, gp := want.Players(), got.Players()
	if len(wp) != len(gp) {
		t.Fatalf("player count = %d, want %d", len(gp), len(wp))
	}
	for i := range wp {
		if gp[i].Name != wp[i].Name {
			t.Errorf("player %d name = %q, want %q", i, gp[i].Name, wp[i].Name)
		}
		if gp[i].Cash != wp[i].Cash {
			t.Errorf("player %d cash = %d, want %d", i, gp[i].Cash, wp[i].Cash)
		}
		for _, sym := range domain.AllSymbols() {
			if gp[i].Holding(sym) != wp[i].Holding(sym) {
				t.Errorf("player %d %s holding = %d, want %d",
					i, sym, gp[i].Holding(sym), wp[i].Holding(sym))
			}
		}
	}

	for _, sym := range domain.AllSymbols() {
		if got.Market()[sym].Price != want.Market()[sym].Price {
			t.Errorf("%s price = %d, want %d", sym, got.Market()[sym].Price, want.Market()[sym].Price)
		}
	}

	wc, gc := want.Config(), got.Config()
	if gc.StartingCash != wc.StartingCash ||
		gc.TradingIntervalRolls != wc.TradingIntervalRolls ||
		len(gc.BlockSizes) != len(wc.BlockSizes) {
		t.Errorf("config = %+v, want %+v", gc, wc)
	}

	if got.RollCount() != want.RollCount() {
		t.Errorf("roll count = %d, want %d", got.RollCount(), want.RollCount())
	}

	wr, gr := want.LastRoll(), got.LastRoll()
	switch {
	case wr == nil && gr != nil, wr != nil && gr == nil:
		t.Errorf("last roll = %+v, want %+v", gr, wr)
	case wr != nil && gr != nil && *wr != *gr:
		t.Errorf("last roll = %+v, want %+v", *gr, *wr)
	}

	if got.InTradingPhase() != want.InTradingPhase() {
		t.Errorf("trading phase = %v, want %v", got.InTradingPhase(), want.InTradingPhase())
	}

	wl, gl := want.Log(), got.Log()
	if len(wl) != len(gl) {
		t.Fatalf("log length = %d, want %d", len(gl), len(wl))
	}
	for i := range wl {
		if gl[i] != wl[i] {
			t.Errorf("log[%d] = %q, want %q", i, gl[i], wl[i])
		}
	}
}

func TestUnmarshalDefaultsMissingOptionalFields(t *testing.T) {
	payload := `{
	  "players": [{"name": "alice", "cash_cents": 500000}],
	  "market": {"GOLD": {"symbol": "GOLD", "price_cents": 145}}
	}`

	g, err := Unmarshal([]byte(payload))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if g.RollCount() != 0 {
		t.Errorf("roll count = %d, want default 0", g.RollCount())
	}
	if !g.InTradingPhase() {
		t.Error("in_trading_phase should default to true")
	}
	if g.LastRoll() != nil {
		t.Error("last_roll should default to absent")
	}
	if len(g.Log()) != 0 {
		t.Errorf("log = %v, want empty", g.Log())
	}

	// Omitted config falls back to the standard rules.
	cfg := g.Config()
	if cfg.StartingCash != domain.DefaultStartingCashCents {
		t.Errorf("starting cash = %d, want default", cfg.StartingCash)
	}

	// Stocks absent from the market default to the starting price.
	if got := g.Market()[domain.Gold].Price; got != 145 {
		t.Errorf("Gold price = %d, want 145", got)
	}
	if got := g.Market()[domain.Silver].Price; got != domain.StartPriceCents {
		t.Errorf("Silver price = %d, want default %d", got, domain.StartPriceCents)
	}
}

func TestUnmarshalRejectsMalformedPayloads(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		wantErr string
	}{
		{
			name:    "not json",
			payload: `{{`,
			wantErr: "parsing snapshot",
		},
		{
			name:    "missing players",
			payload: `{"market": {}}`,
			wantErr: "no players",
		},
		{
			name:    "missing market",
			payload: `{"players": []}`,
			wantErr: "no market",
		},
		{
			name:    "unknown market symbol",
			payload: `{"players": [], "market": {"PLATINUM": {"symbol": "PLATINUM", "price_cents": 100}}}`,
			wantErr: "unknown stock symbol",
		},
		{
			name:    "unknown holdings symbol",
			payload: `{"players": [{"name": "a", "cash_cents": 1, "holdings": {"COPPER": 500}}], "market": {}}`,
			wantErr: "unknown stock symbol",
		},
		{
			name:    "missing player name",
			payload: `{"players": [{"cash_cents": 1}], "market": {}}`,
			wantErr: "missing name",
		},
		{
			name:    "missing player cash",
			payload: `{"players": [{"name": "a"}], "market": {}}`,
			wantErr: "missing cash_cents",
		},
		{
			name:    "non-integer cash",
			payload: `{"players": [{"name": "a", "cash_cents": 10.5}], "market": {}}`,
			wantErr: "parsing snapshot",
		},
		{
			name:    "non-integer price",
			payload: `{"players": [], "market": {"GOLD": {"symbol": "GOLD", "price_cents": 99.9}}}`,
			wantErr: "parsing snapshot",
		},
		{
			name:    "missing market price",
			payload: `{"players": [], "market": {"GOLD": {"symbol": "GOLD"}}}`,
			wantErr: "missing price_cents",
		},
		{
			name:    "short last_roll tuple",
			payload: `{"players": [], "market": {}, "last_roll": ["GOLD", "Up"]}`,
			wantErr: "3 elements",
		},
		{
			name:    "unknown last_roll action",
			payload: `{"players": [], "market": {}, "last_roll": ["GOLD", "Sideways", 5]}`,
			wantErr: "unknown die action",
		},
		{
			name:    "unknown last_roll symbol",
			payload: `{"players": [], "market": {}, "last_roll": ["PLATINUM", "Up", 5]}`,
			wantErr: "unknown stock symbol",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tc.payload))
			if err == nil {
				t.Fatal("Unmarshal should fail")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestLastRollSurvivesRoundTrip(t *testing.T) {
	g := newGame(t)
	want := domain.Roll{Symbol: domain.Grain, Action: domain.ActionDividend, Amount: 10}
	g.ApplyRoll(&want)

	data, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"GRAIN"`) || !strings.Contains(string(data), `"Dividend"`) {
		t.Errorf("snapshot should persist enum names, got: %s", data)
	}

	restored, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got := restored.LastRoll()
	if got == nil || *got != want {
		t.Errorf("last roll = %+v, want %+v", got, want)
	}
}
