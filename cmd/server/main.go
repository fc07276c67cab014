package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"shopcraft.gg/internal/config"
	"shopcraft.gg/internal/persistence/ledgerdb"
	"shopcraft.gg/internal/persistence/tradelog"
	"shopcraft.gg/internal/sim/catalogs"
	"shopcraft.gg/internal/sim/item"
	"shopcraft.gg/internal/sim/market"
	"shopcraft.gg/internal/sim/recipe"
	"shopcraft.gg/internal/transport/ws"
)

func main() {
	var (
		addr      = flag.String("addr", ":8080", "http listen address")
		configDir = flag.String("configs", "./configs", "config directory")
		dataDir   = flag.String("data", "./data", "runtime data directory")
		disableDB = flag.Bool("disable_db", false, "disable the sqlite trade ledger")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(filepath.Join(*configDir, "settings.yaml"))
	if err != nil {
		logger.Fatalf("load settings: %v", err)
	}

	cats, err := catalogs.Load(filepath.Join(*configDir, "items.json"))
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	_ = os.MkdirAll(*dataDir, 0o755)

	tradeLog := tradelog.NewTradeLogger(*dataDir)
	defer tradeLog.Close()

	var ledger *ledgerdb.SQLiteLedger
	if !*disableDB {
		ledger, err = ledgerdb.Open(filepath.Join(*dataDir, "ledger.db"))
		if err != nil {
			logger.Fatalf("open ledger: %v", err)
		}
		defer ledger.Close()
	}

	m, err := market.New(cfg, cats, multiRecorder{a: tradeLog, b: ledger}, logger)
	if err != nil {
		logger.Fatalf("market: %v", err)
	}

	shops, err := config.LoadShops(filepath.Join(*configDir, "shops.yaml"))
	if err != nil {
		logger.Fatalf("load shops: %v", err)
	}
	for _, def := range shops {
		s := m.NewAdminShopkeeper(def.Name, def.Position, buildRecipes(def.Recipes))
		if def.TradePermission != "" {
			s.SetTradePermission(def.TradePermission)
		}
		if ledger != nil {
			if err := ledger.UpsertShopkeeper(s.ID(), s.Name(), def.Position, len(def.Recipes)); err != nil {
				logger.Printf("ledger: upsert shopkeeper %s: %v", s.ID(), err)
			}
		}
	}
	logger.Printf("seeded %d admin shops", len(shops))

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := m.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("market stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		mm := m.Metrics()

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP shopcraft_tick Current kernel tick.\n")
		fmt.Fprintf(rw, "# TYPE shopcraft_tick gauge\n")
		fmt.Fprintf(rw, "shopcraft_tick %d\n", mm.Tick)

		fmt.Fprintf(rw, "# HELP shopcraft_players Connected players.\n")
		fmt.Fprintf(rw, "# TYPE shopcraft_players gauge\n")
		fmt.Fprintf(rw, "shopcraft_players %d\n", mm.Players)

		fmt.Fprintf(rw, "# HELP shopcraft_shops Registered shopkeepers.\n")
		fmt.Fprintf(rw, "# TYPE shopcraft_shops gauge\n")
		fmt.Fprintf(rw, "shopcraft_shops %d\n", mm.Shops)

		fmt.Fprintf(rw, "# HELP shopcraft_queue_depth Kernel channel backlog depth.\n")
		fmt.Fprintf(rw, "# TYPE shopcraft_queue_depth gauge\n")
		fmt.Fprintf(rw, "shopcraft_queue_depth{queue=%q} %d\n", "inbox", mm.InboxDepth)
		fmt.Fprintf(rw, "shopcraft_queue_depth{queue=%q} %d\n", "join", mm.JoinDepth)
		fmt.Fprintf(rw, "shopcraft_queue_depth{queue=%q} %d\n", "leave", mm.LeaveDepth)

		if ledger != nil {
			fmt.Fprintf(rw, "# HELP shopcraft_ledger_dropped_total Trades dropped before indexing.\n")
			fmt.Fprintf(rw, "# TYPE shopcraft_ledger_dropped_total counter\n")
			fmt.Fprintf(rw, "shopcraft_ledger_dropped_total %d\n", ledger.DropTotal())
		}
	})
	mux.HandleFunc("/v1/ws", ws.NewServer(m, cats.Items.DefsDigest, []string{cfg.TradePermission}, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func buildRecipes(defs []config.RecipeDef) []recipe.TradingRecipe {
	out := make([]recipe.TradingRecipe, 0, len(defs))
	for _, d := range defs {
		item2 := item.Stack{}
		if d.Item2 != nil {
			item2 = buildStack(*d.Item2)
		}
		r, err := recipe.New(buildStack(d.Item1), item2, buildStack(d.Result))
		if err != nil {
			// LoadShops validated amounts already.
			continue
		}
		out = append(out, r)
	}
	return out
}

func buildStack(d config.StackDef) item.Stack {
	s := item.Stack{Type: strings.TrimSpace(d.Item), Amount: d.Amount}
	if len(d.Meta) > 0 {
		s.Meta = map[string]string{}
		for k, v := range d.Meta {
			s.Meta[k] = v
		}
	}
	return s
}

// multiRecorder fans completed trades out to the JSONL log and the sqlite
// ledger. A nil side is skipped.
type multiRecorder struct {
	a market.TradeRecorder
	b *ledgerdb.SQLiteLedger
}

func (m multiRecorder) RecordTrade(rec market.TradeRecord) {
	if m.a != nil {
		m.a.RecordTrade(rec)
	}
	if m.b != nil {
		m.b.RecordTrade(rec)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
