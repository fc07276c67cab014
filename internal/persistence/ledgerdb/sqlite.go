// Package ledgerdb is a queryable sqlite index of completed trades. Writes
// go through a single background goroutine so the tick loop never blocks on
// disk; entries may be dropped under pressure, the JSONL trade log remains
// the source of truth.
package ledgerdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"shopcraft.gg/internal/sim/market"
)

type SQLiteLedger struct {
	db *sql.DB

	ch   chan market.TradeRecord
	wg   sync.WaitGroup
	once sync.Once

	closed    atomic.Bool
	dropTotal atomic.Uint64
}

func Open(path string) (*SQLiteLedger, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	l := &SQLiteLedger{
		db: db,
		ch: make(chan market.TradeRecord, 8192),
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.loop()
	}()
	return l, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			tick INTEGER NOT NULL,
			player_id TEXT NOT NULL,
			player_name TEXT NOT NULL,
			shopkeeper_id TEXT NOT NULL,
			shop_name TEXT,
			item1 TEXT NOT NULL,
			item1_amount INTEGER NOT NULL,
			item2 TEXT,
			item2_amount INTEGER,
			result TEXT NOT NULL,
			result_amount INTEGER NOT NULL,
			proceeds INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trades_shop_tick ON trades(shopkeeper_id, tick);`,
		`CREATE INDEX IF NOT EXISTS idx_trades_player_tick ON trades(player_id, tick);`,
		`CREATE TABLE IF NOT EXISTS shopkeepers (
			shopkeeper_id TEXT PRIMARY KEY,
			name TEXT,
			position TEXT,
			recipes INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (l *SQLiteLedger) Close() error {
	var err error
	l.once.Do(func() {
		l.closed.Store(true)
		close(l.ch)
		l.wg.Wait()
		err = l.db.Close()
	})
	return err
}

// RecordTrade enqueues a trade for indexing. Never blocks; drops if the
// writer falls behind.
func (l *SQLiteLedger) RecordTrade(rec market.TradeRecord) {
	if l == nil || l.closed.Load() {
		return
	}
	select {
	case l.ch <- rec:
	default:
		l.dropTotal.Add(1)
	}
}

func (l *SQLiteLedger) DropTotal() uint64 { return l.dropTotal.Load() }

func (l *SQLiteLedger) loop() {
	for rec := range l.ch {
		_, err := l.db.Exec(
			`INSERT INTO trades (tick, player_id, player_name, shopkeeper_id, shop_name,
				item1, item1_amount, item2, item2_amount, result, result_amount, proceeds, recorded_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.Tick, rec.PlayerID, rec.PlayerName, rec.ShopkeeperID, rec.ShopName,
			rec.Item1, rec.Item1Amount, rec.Item2, rec.Item2Amount,
			rec.Result, rec.ResultAmount, rec.Proceeds, rec.RecordedAt,
		)
		_ = err // indexing is best effort
	}
}

// UpsertShopkeeper records the current roster row for one shopkeeper.
// Synchronous; meant for startup wiring and rename bookkeeping, not the
// per-click path.
func (l *SQLiteLedger) UpsertShopkeeper(id, name, position string, recipes int) error {
	_, err := l.db.Exec(
		`INSERT INTO shopkeepers (shopkeeper_id, name, position, recipes, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(shopkeeper_id) DO UPDATE SET
			name=excluded.name, position=excluded.position,
			recipes=excluded.recipes, updated_at=excluded.updated_at`,
		id, name, position, recipes, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ShopTotals summarizes a shopkeeper's trading activity.
type ShopTotals struct {
	ShopkeeperID string
	Name         string
	Trades       int
	Proceeds     int
}

// TotalsByShop reads back aggregate numbers for one shopkeeper. Intended
// for admin/diagnostic queries, not the hot path.
func (l *SQLiteLedger) TotalsByShop(shopkeeperID string) (ShopTotals, error) {
	t := ShopTotals{ShopkeeperID: shopkeeperID}
	row := l.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(proceeds), 0) FROM trades WHERE shopkeeper_id = ?`,
		shopkeeperID,
	)
	if err := row.Scan(&t.Trades, &t.Proceeds); err != nil {
		return t, err
	}
	return t, nil
}

// ListShopTotals aggregates all trades, including roster rows that have
// not traded yet.
func (l *SQLiteLedger) ListShopTotals() ([]ShopTotals, error) {
	rows, err := l.db.Query(
		`SELECT s.shopkeeper_id, COALESCE(s.name, ''), COUNT(t.seq), COALESCE(SUM(t.proceeds), 0)
		 FROM shopkeepers s
		 LEFT JOIN trades t ON t.shopkeeper_id = s.shopkeeper_id
		 GROUP BY s.shopkeeper_id
		 ORDER BY s.shopkeeper_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ShopTotals
	for rows.Next() {
		var t ShopTotals
		if err := rows.Scan(&t.ShopkeeperID, &t.Name, &t.Trades, &t.Proceeds); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
