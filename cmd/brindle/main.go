package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jprovost/brindle/pkg/engine"
	"github.com/jprovost/brindle/pkg/engine/console"
	"github.com/jprovost/brindle/pkg/engine/livebridge"
	"github.com/jprovost/brindle/pkg/engine/persist"
	"github.com/jprovost/brindle/pkg/engine/uci"
	"github.com/jprovost/brindle/pkg/engineconfig"
	"github.com/jprovost/brindle/pkg/eval"
	"github.com/jprovost/brindle/pkg/polyglot"
	"github.com/jprovost/brindle/pkg/search"
	"github.com/seekerror/logw"
)

var (
	configPath = flag.String("config", "", "Path to a TOML config file with engine defaults; flags below override it")

	noise          = flag.Int("noise", 0, "Evaluation noise in millipawns (zero if deterministic)")
	hash           = flag.Int("hash", 64, "Transposition table size in MB (zero disables it)")
	workers        = flag.Int("workers", 1, "Number of search worker goroutines sharing the table")
	book           = flag.String("book", "", "Path to a Polyglot opening book (.bin); empty disables the book")
	bookRnd        = flag.Int64("book-seed", 0, "Random seed used to pick among weighted book moves")
	persistPath    = flag.String("persist", "", "Directory for a durable root-result cache; empty disables it")
	livebridgeAddr = flag.String("livebridge", "", "Listen address for the websocket protocol adapter; empty runs the stdio protocol instead")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: brindle [options]

brindle is a UCI chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	cfg, err := engineconfig.Load(*configPath)
	if err != nil {
		logw.Exitf(ctx, "Failed to load config %v: %v", *configPath, err)
	}

	// Flags explicitly passed on the command line override whatever the config file set.
	explicit := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	if explicit["hash"] {
		cfg.Hash = uint(*hash)
	}
	if explicit["noise"] {
		cfg.Noise = uint(*noise)
	}
	if explicit["workers"] {
		cfg.Workers = *workers
	}
	if explicit["book"] {
		cfg.Book = *book
	}
	if explicit["book-seed"] {
		cfg.BookSeed = *bookRnd
	}
	if explicit["persist"] {
		cfg.Persist = *persistPath
	}
	if explicit["livebridge"] {
		cfg.Livebridge.Addr = *livebridgeAddr
	}

	root := search.AlphaBeta{
		Quiet: search.Quiescence{
			Eval: eval.Standard{},
		},
	}
	var engineOpts []engine.Option
	engineOpts = append(engineOpts, engine.WithOptions(cfg.EngineOptions()))

	if cfg.Persist != "" {
		store, err := persist.Open(cfg.Persist)
		if err != nil {
			logw.Exitf(ctx, "Failed to open persist store %v: %v", cfg.Persist, err)
		}
		defer store.Close()

		engineOpts = append(engineOpts, engine.WithPersist(store))
	}

	e := engine.New(ctx, "brindle", "jprovost", root, engineOpts...)

	var uciOpts []uci.Option
	if cfg.Book != "" {
		b, err := polyglot.Open(cfg.Book)
		if err != nil {
			logw.Exitf(ctx, "Failed to open book %v: %v", cfg.Book, err)
		}
		defer b.Close()

		uciOpts = append(uciOpts, uci.UseBook(b, cfg.BookSeed))
	}

	if cfg.Livebridge.Addr != "" {
		if err := livebridge.Serve(ctx, cfg.Livebridge.Addr, e, uciOpts...); err != nil {
			logw.Exitf(ctx, "livebridge failed: %v", err)
		}
		return
	}

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		// Use UCI protocol.

		driver, out := uci.NewDriver(ctx, e, in, uciOpts...)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	case console.ProtocolName:
		driver, out := console.NewDriver(ctx, e, root, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}
