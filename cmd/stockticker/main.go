// Command stockticker is the terminal host for the stock ticker board
// game. It drives the game engine, renders its observable state, and
// persists saves and roll history; no game rules live here.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/michaelkernaghan/stockticker/internal/config"
	"github.com/michaelkernaghan/stockticker/internal/dashboard"
	"github.com/michaelkernaghan/stockticker/internal/domain"
	"github.com/michaelkernaghan/stockticker/internal/engine"
	"github.com/michaelkernaghan/stockticker/internal/snapshot"
	"github.com/michaelkernaghan/stockticker/internal/store"
	"github.com/michaelkernaghan/stockticker/internal/util"
)

const version = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: stockticker <command> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  version    Print the version\n")
		fmt.Fprintf(os.Stderr, "  new        Start a new game\n")
		fmt.Fprintf(os.Stderr, "  resume     Resume a saved game\n")
		fmt.Fprintf(os.Stderr, "  saves      List save slots\n")
		fmt.Fprintf(os.Stderr, "\n")
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("stockticker %s\n", version)

	case "new":
		fs := flag.NewFlagSet("new", flag.ExitOnError)
		cfgPath := fs.String("config", "", "path to YAML config file")
		players := fs.String("players", "", "comma-separated player names")
		seed := fs.Int64("seed", 0, "dice seed (0 uses a random seed)")
		fs.Parse(os.Args[2:])

		cfg := loadConfig(*cfgPath)
		if *players == "" {
			fmt.Fprintln(os.Stderr, "new: -players is required")
			os.Exit(1)
		}

		gameCfg := cfg.GameConfig()
		if *seed != 0 {
			gameCfg.Seed = seed
		}
		game, err := engine.New(strings.Split(*players, ","), &gameCfg)
		if err != nil {
			fatalf("creating game: %v", err)
		}
		runSession(cfg, game)

	case "resume":
		fs := flag.NewFlagSet("resume", flag.ExitOnError)
		cfgPath := fs.String("config", "", "path to YAML config file")
		name := fs.String("name", "", "save slot name")
		fs.Parse(os.Args[2:])

		cfg := loadConfig(*cfgPath)
		if *name == "" {
			fmt.Fprintln(os.Stderr, "resume: -name is required")
			os.Exit(1)
		}

		saves := openSaveStore(cfg)
		defer saves.Close()
		data, err := saves.LoadGame(context.Background(), *name)
		if err != nil {
			fatalf("loading save: %v", err)
		}
		game, err := snapshot.Unmarshal(data)
		if err != nil {
			fatalf("restoring game: %v", err)
		}
		runSession(cfg, game)

	case "saves":
		fs := flag.NewFlagSet("saves", flag.ExitOnError)
		cfgPath := fs.String("config", "", "path to YAML config file")
		fs.Parse(os.Args[2:])

		cfg := loadConfig(*cfgPath)
		saves := openSaveStore(cfg)
		defer saves.Close()
		infos, err := saves.ListSaves(context.Background())
		if err != nil {
			fatalf("listing saves: %v", err)
		}
		if len(infos) == 0 {
			fmt.Println("no saved games")
			return
		}
		for _, info := range infos {
			fmt.Printf("%-20s updated %s\n", info.Name, info.UpdatedAt.Local().Format(time.RFC822))
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		flag.Usage()
		os.Exit(1)
	}
}

func loadConfig(path string) *config.Config {
	if path == "" {
		if p := os.Getenv("STOCKTICKER_CONFIG"); p != "" {
			path = p
		}
	}
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fatalf("loading config: %v", err)
	}
	return cfg
}

func openSaveStore(cfg *config.Config) *store.SQLiteStore {
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.SQLitePath), 0o755); err != nil {
		fatalf("creating storage dir: %v", err)
	}
	s, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		fatalf("opening save store: %v", err)
	}
	return s
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// session holds everything one interactive game needs.
type session struct {
	cfg     *config.Config
	game    *engine.Game
	logger  *slog.Logger
	sqlite  *store.SQLiteStore
	parquet *store.ParquetStore
	gameID  string

	// Roll records not yet flushed to the Parquet archive.
	pending []store.RollRecord
}

func runSession(cfg *config.Config, game *engine.Game) {
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	s := &session{
		cfg:     cfg,
		game:    game,
		logger:  logger,
		sqlite:  openSaveStore(cfg),
		parquet: store.NewParquetStore(cfg.Storage.DataDir),
		gameID:  uuid.NewString(),
	}
	defer s.sqlite.Close()

	logger.Info("session started", "game_id", s.gameID, "players", len(game.Players()))

	fmt.Print(dashboard.MarketTable(game.Market()))
	fmt.Println(`Commands: roll, buy <player#> <stock> <shares>, sell <player#> <stock> <shares>,
end, market, players, standings, log, history, interval <rolls>, save <name>, quit`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("[%s] > ", dashboard.StatusLine(game))
		if !scanner.Scan() {
			break
		}
		if s.dispatch(strings.Fields(scanner.Text())) {
			break
		}
	}

	s.flushHistory()
}

// dispatch runs one command. It returns true when the session should end.
func (s *session) dispatch(args []string) bool {
	if len(args) == 0 {
		return false
	}

	switch args[0] {
	case "roll":
		s.roll()

	case "buy", "sell":
		s.trade(args)

	case "end":
		s.game.EndTradingPhase()
		fmt.Println("Trading phase ended.")

	case "market":
		fmt.Print(dashboard.MarketTable(s.game.Market()))

	case "players":
		fmt.Print(dashboard.PlayerTable(s.game.Players(), s.game.Market()))

	case "standings":
		fmt.Print(dashboard.StandingsTable(s.game.Standings()))

	case "log":
		printLog(s.game.Log())

	case "history":
		s.history()

	case "interval":
		if len(args) != 2 {
			fmt.Println("usage: interval <rolls>")
			return false
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Println("interval must be an integer")
			return false
		}
		if err := s.game.SetTradingInterval(n); err != nil {
			fmt.Println(err)
			return false
		}
		fmt.Printf("trading interval set to %d rolls\n", n)

	case "save":
		if len(args) != 2 {
			fmt.Println("usage: save <name>")
			return false
		}
		s.save(args[1])

	case "quit", "exit":
		return true

	default:
		fmt.Printf("unknown command: %s\n", args[0])
	}
	return false
}

// roll closes an open trading phase first, matching the table rules: you
// stop trading, then the dice go around.
func (s *session) roll() {
	if s.game.InTradingPhase() {
		s.game.EndTradingPhase()
		fmt.Println("Trading phase closed for the roll.")
	}

	before := len(s.game.Log())
	r := s.game.ApplyRoll(nil)
	for _, line := range s.game.Log()[before:] {
		fmt.Println(line)
	}

	record := store.RollRecord{
		GameID:      s.gameID,
		Seq:         int64(s.game.RollCount()),
		Symbol:      r.Symbol.Name(),
		Action:      r.Action.String(),
		AmountCents: int64(r.Amount),
		PriceCents:  int64(s.game.Market()[r.Symbol].Price),
		RolledAt:    time.Now(),
	}
	s.pending = append(s.pending, record)
	if err := s.sqlite.WriteRolls(context.Background(), []store.RollRecord{record}); err != nil {
		s.logger.Warn("recording roll history", "error", err)
	}
}

// history prints the recorded rolls for this game and per-stock totals.
func (s *session) history() {
	records, err := s.sqlite.ReadRolls(context.Background(), s.gameID)
	if err != nil {
		fmt.Printf("reading roll history: %v\n", err)
		return
	}
	if len(records) == 0 {
		fmt.Println("no rolls recorded yet")
		return
	}
	fmt.Print(dashboard.HistoryTable(records))
	fmt.Println()
	fmt.Print(dashboard.RollStatsTable(dashboard.AggregateRolls(records)))
}

func (s *session) trade(args []string) {
	if len(args) != 4 {
		fmt.Printf("usage: %s <player#> <stock> <shares>\n", args[0])
		return
	}

	playerIndex, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Println("player# must be an integer")
		return
	}
	sym, err := domain.ParseStockSymbol(strings.ToUpper(args[2]))
	if err != nil {
		fmt.Println(err)
		return
	}
	shares, err := strconv.ParseInt(args[3], 10, 64)
	if err != nil {
		fmt.Println("shares must be an integer")
		return
	}

	// The engine allows trading at any time; warn so the table can keep
	// each other honest.
	if !s.game.InTradingPhase() {
		fmt.Println("note: trading phase is closed")
	}

	if args[0] == "buy" {
		err = s.game.Buy(playerIndex, sym, shares)
	} else {
		err = s.game.Sell(playerIndex, sym, shares)
	}
	if err != nil {
		fmt.Println(err)
		return
	}
	printLastLogLines(s.game.Log(), 1)
}

func (s *session) save(name string) {
	data, err := snapshot.Marshal(s.game)
	if err != nil {
		fmt.Printf("snapshot failed: %v\n", err)
		return
	}
	info, err := s.sqlite.SaveGame(context.Background(), name, data)
	if err != nil {
		fmt.Printf("save failed: %v\n", err)
		return
	}
	s.flushHistory()
	fmt.Printf("saved %q (%s)\n", info.Name, info.ID)
}

func (s *session) flushHistory() {
	if len(s.pending) == 0 {
		return
	}
	if err := s.parquet.WriteRolls(context.Background(), s.pending); err != nil {
		s.logger.Warn("flushing roll history archive", "error", err)
		return
	}
	s.pending = nil
}

// printLog shows the most recent 200 log lines.
func printLog(log []string) {
	start := 0
	if len(log) > 200 {
		start = len(log) - 200
	}
	for _, line := range log[start:] {
		fmt.Println(line)
	}
}

func printLastLogLines(log []string, n int) {
	start := len(log) - n
	if start < 0 {
		start = 0
	}
	for _, line := range log[start:] {
		fmt.Println(line)
	}
}
