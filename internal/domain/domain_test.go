package domain

import "testing"

func TestSymbolNamesRoundTrip(t *testing.T) {
	for _, sym := range AllSymbols() {
		got, err := ParseStockSymbol(sym.Name())
		if err != nil {
			t.Fatalf("ParseStockSymbol(%q): %v", sym.Name(), err)
		}
		if got != sym {
			t.Errorf("ParseStockSymbol(%q) = %v, want %v", sym.Name(), got, sym)
		}
	}
}

func TestParseStockSymbolRejectsUnknown(t *testing.T) {
	for _, name := range []string{"", "gold", "Gold", "PLATINUM"} {
		if _, err := ParseStockSymbol(name); err == nil {
			t.Errorf("ParseStockSymbol(%q) should fail", name)
		}
	}
}

func TestSymbolLabels(t *testing.T) {
	cases := map[StockSymbol]string{
		Gold:        "Gold",
		Silver:      "Silver",
		Bonds:       "Bonds",
		Oil:         "Oil",
		Industrials: "Industrials",
		Grain:       "Grain",
	}
	for sym, want := range cases {
		if got := sym.String(); got != want {
			t.Errorf("%s.String() = %q, want %q", sym.Name(), got, want)
		}
	}
}

func TestActionNamesRoundTrip(t *testing.T) {
	for _, action := range AllActions() {
		got, err := ParseDieAction(action.String())
		if err != nil {
			t.Fatalf("ParseDieAction(%q): %v", action.String(), err)
		}
		if got != action {
			t.Errorf("ParseDieAction(%q) = %v, want %v", action.String(), got, action)
		}
	}

	if _, err := ParseDieAction("Sideways"); err == nil {
		t.Error("ParseDieAction should reject unknown actions")
	}
}

func TestCentsString(t *testing.T) {
	cases := []struct {
		cents Cents
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{100, "$1.00"},
		{12345, "$123.45"},
		{500000, "$5000.00"},
		{-250, "$-2.50"},
	}
	for _, tc := range cases {
		if got := tc.cents.String(); got != tc.want {
			t.Errorf("Cents(%d).String() = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestRollString(t *testing.T) {
	r := Roll{Symbol: Gold, Action: ActionUp, Amount: 20}
	if got, want := r.String(), "Gold Up 20¢"; got != want {
		t.Errorf("Roll.String() = %q, want %q", got, want)
	}
}

func TestRuleConstants(t *testing.T) {
	if StartPriceCents != 100 || SplitPriceCents != 200 || BankruptPriceCents != 0 {
		t.Error("price thresholds changed")
	}
	if DefaultStartingCashCents != 500000 {
		t.Errorf("starting cash = %d, want 500000", DefaultStartingCashCents)
	}
	if len(StepValuesCents) != 3 {
		t.Errorf("step values = %v, want {5,10,20}", StepValuesCents)
	}
	if len(DefaultBlockSizes) != 4 {
		t.Errorf("block sizes = %v, want {500,1000,2000,5000}", DefaultBlockSizes)
	}
}
