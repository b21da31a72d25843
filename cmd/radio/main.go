package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"schoolradio/internal/api"
	"schoolradio/internal/catalog"
	"schoolradio/internal/config"
	"schoolradio/internal/events"
	"schoolradio/internal/presence"
	"schoolradio/internal/radio"
	"schoolradio/internal/schedule"
	"schoolradio/internal/statestore"
)

func main() {
	// 1. Parse Flags
	listenAddr := flag.String("listen", "", "Override HTTP listen address")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// 2. Load Config
	cfg := config.Load()
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}

	sink := events.NewSlogSink(slog.Default())

	// 3. Init the two-tier shared store
	cache, err := statestore.NewCache(cfg.Store.CachePath)
	if err != nil {
		log.Fatalf("❌ Failed to open local cache: %v", err)
	}

	// The primary dials lazily, so a boot-time outage leaves the station on
	// the cache tier until Valkey answers again.
	primary := statestore.NewLazy(func() (statestore.Store, error) {
		client, err := statestore.NewValkey(cfg.Store.Address, cfg.Store.KeyPrefix)
		if err != nil {
			return nil, err
		}
		return client, nil
	})
	store := statestore.NewTiered(primary, cache, sink)
	defer store.Close()

	records := statestore.NewRecords(store)

	// 4. Catalog source
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := catalog.NewYouTube(ctx, cfg.Catalog.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to init catalog source: %v", err)
	}

	// 5. Assemble the engine
	clock := schedule.RealClock{}
	vclock := schedule.NewVirtualClock(records, clock, sink)
	tracker := presence.NewTracker(records, clock, sink, cfg.StaleAfter())
	engine := radio.New(cfg, records, source, tracker, vclock, clock, sink)

	radio.RegisterMetrics()

	log.Println("🚀 Starting SchoolRadio scheduling engine...")

	// 6. Serve the API beside the engine loops
	server := api.New(cfg, engine, tracker)
	go func() {
		if err := server.Start(cfg.Server.ListenAddr); err != nil {
			log.Fatalf("❌ HTTP server stopped: %v", err)
		}
	}()

	if err := engine.Run(ctx); err != nil {
		log.Fatalf("❌ Engine stopped: %v", err)
	}
	log.Println("📻 Shutdown complete")
}
