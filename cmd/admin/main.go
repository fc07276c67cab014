// Command admin inspects a shop server's data directory: aggregate numbers
// from the sqlite ledger and raw entries from the compressed trade log.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"shopcraft.gg/internal/persistence/ledgerdb"
	"shopcraft.gg/internal/sim/market"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "totals":
			totalsCmd(os.Args[2:])
			return
		case "trades":
			tradesCmd(os.Args[2:])
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: admin totals|trades [flags]")
	os.Exit(2)
}

func totalsCmd(args []string) {
	fs := flag.NewFlagSet("totals", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	shopID := fs.String("shop", "", "shopkeeper id (optional; defaults to full roster)")
	_ = fs.Parse(args)

	ledger, err := ledgerdb.Open(filepath.Join(*dataDir, "ledger.db"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "open ledger:", err)
		os.Exit(1)
	}
	defer ledger.Close()

	if *shopID != "" {
		t, err := ledger.TotalsByShop(*shopID)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		fmt.Printf("%s trades=%d proceeds=%d\n", t.ShopkeeperID, t.Trades, t.Proceeds)
		return
	}

	totals, err := ledger.ListShopTotals()
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	for _, t := range totals {
		fmt.Printf("%s %-24q trades=%d proceeds=%d\n", t.ShopkeeperID, t.Name, t.Trades, t.Proceeds)
	}
}

func tradesCmd(args []string) {
	fs := flag.NewFlagSet("trades", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	shopID := fs.String("shop", "", "filter by shopkeeper id (optional)")
	playerID := fs.String("player", "", "filter by player id (optional)")
	fromTick := fs.Uint64("from_tick", 0, "start tick (inclusive, optional)")
	toTick := fs.Uint64("to_tick", 0, "end tick (inclusive, optional)")
	_ = fs.Parse(args)

	files, err := listTradeFiles(filepath.Join(*dataDir, "trades"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "list trade logs:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no trade logs found")
		os.Exit(1)
	}

	var printed int
	for _, path := range files {
		n, err := dumpFile(path, *shopID, *playerID, *fromTick, *toTick)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read:", err)
			os.Exit(1)
		}
		printed += n
	}
	fmt.Fprintf(os.Stderr, "%d trades\n", printed)
}

func listTradeFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "trades-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

func dumpFile(path, shopID, playerID string, fromTick, toTick uint64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return 0, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	var printed int
	for sc.Scan() {
		line := sc.Bytes()
		var rec market.TradeRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return printed, fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		if shopID != "" && rec.ShopkeeperID != shopID {
			continue
		}
		if playerID != "" && rec.PlayerID != playerID {
			continue
		}
		if rec.Tick < fromTick {
			continue
		}
		if toTick != 0 && rec.Tick > toTick {
			continue
		}
		fmt.Printf("%s\n", line)
		printed++
	}
	return printed, sc.Err()
}
