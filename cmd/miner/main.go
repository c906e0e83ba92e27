// Command miner is a headless client for the hashrig game: it signs in,
// reconciles offline earnings, mines on a fixed tick, buys upgrades with an
// efficiency-first strategy, and keeps the server in sync through the
// offline-tolerant sync engine.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/hashrig/hashrig/clock"
	"github.com/hashrig/hashrig/game"
	"github.com/hashrig/hashrig/parts"
	"github.com/hashrig/hashrig/syncer"
)

func main() {
	serverURL := flag.String("server", envDefault("HASHRIG_SERVER", "http://localhost:8080"), "base URL of the game server")
	username := flag.String("username", os.Getenv("HASHRIG_USERNAME"), "account username")
	password := flag.String("password", os.Getenv("HASHRIG_PASSWORD"), "account password")
	email := flag.String("email", os.Getenv("HASHRIG_EMAIL"), "email for --register")
	register := flag.Bool("register", false, "create the account before signing in")
	dataDir := flag.String("data-dir", envDefault("HASHRIG_DATA_DIR", "data"), "directory for the durable state cache")
	partsConfig := flag.String("parts-config", os.Getenv("PARTS_CONFIG"), "optional YAML part catalog override")
	autoUpgrade := flag.Bool("auto-upgrade", true, "buy the most efficient affordable upgrade automatically")
	statusEvery := flag.Duration("status-every", 10*time.Second, "status line interval")
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatal("username and password are required")
	}

	catalog := parts.DefaultCatalog()
	if *partsConfig != "" {
		loaded, err := parts.LoadCatalog(*partsConfig)
		if err != nil {
			log.Fatal("failed to load part catalog:", err)
		}
		catalog = loaded
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := syncer.NewClient(strings.TrimRight(*serverURL, "/"))
	if *register {
		user, err := client.Register(ctx, *username, *email, *password)
		if err != nil {
			log.Fatal("registration failed:", err)
		}
		log.Println("Registered account", user.Username)
	} else {
		user, err := client.Login(ctx, *username, *password)
		if err != nil {
			log.Fatal("login failed:", err)
		}
		log.Println("Signed in as", user.Username)
	}

	cache, err := syncer.NewCache(*dataDir, catalog)
	if err != nil {
		log.Fatal("failed to open state cache:", err)
	}
	engine := syncer.NewEngine(client, cache, catalog)
	defer engine.Close()

	state, err := engine.Load(ctx)
	if err != nil {
		log.Fatal("failed to load game state:", err)
	}

	store := game.NewStore(catalog, clock.RealClock{})
	store.Replace(state)
	store.SetVersion(state.Version)
	engine.OnAck = store.SetVersion

	reconcileOffline(ctx, store, state, engine, client)

	store.StartMining()
	scheduler := game.NewScheduler(store, func() {
		engine.Save(store.Snapshot())
	})
	scheduler.Start()
	log.Println("Mining started")

	run(ctx, store, engine, catalog, *autoUpgrade, *statusEvery)

	// Session end: stop ticking, then force the pending save out.
	scheduler.Stop()
	store.StopMining()
	if _, err := engine.SaveNow(context.Background(), store.Snapshot()); err != nil {
		log.Println("final save failed:", err)
	}
	engine.Flush()
	log.Println("Goodbye")
}

// reconcileOffline applies retroactive earnings once for this session and
// persists the result.
func reconcileOffline(ctx context.Context, store *game.Store, loaded game.State, engine *syncer.Engine, client *syncer.Client) {
	var reconciler game.Reconciler
	result, ran := reconciler.Run(store, loaded, time.Now().UTC())
	if !ran || result.Earnings <= 0 {
		return
	}
	log.Printf("Offline for %s: earned %.0f at reduced efficiency",
		game.FormatDuration(time.Duration(result.TimeOffline)*time.Second), result.Earnings)
	_ = client.EmitTelemetry(ctx, "offline_earnings_applied", map[string]interface{}{
		"earnings":    result.Earnings,
		"timeOffline": result.TimeOffline,
	})
	engine.Save(store.Snapshot())
}

func run(ctx context.Context, store *game.Store, engine *syncer.Engine, catalog parts.Catalog, autoUpgrade bool, statusEvery time.Duration) {
	status := time.NewTicker(statusEvery)
	defer status.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-status.C:
			if !engine.Online() {
				if err := engine.Reconnect(ctx); err != nil {
					log.Println("still offline:", err)
				}
			}
			snapshot := store.Snapshot()
			printStatus(snapshot, catalog, engine)
			if autoUpgrade {
				tryUpgrade(ctx, store, engine, catalog)
			}
		}
	}
}

func printStatus(s game.State, catalog parts.Catalog, engine *syncer.Engine) {
	line := fmt.Sprintf("balance=%.1f rate=%s mined=%.1f uptime=%s",
		s.Balance,
		game.FormatHashRate(catalog.TotalHashRate(s.Parts)),
		s.TotalMined,
		game.FormatDuration(game.MiningTime(s, time.Now().UTC())),
	)
	if queued := engine.QueueLen(); queued > 0 {
		line += fmt.Sprintf(" queued=%d", queued)
	}
	if !engine.Online() {
		line += " [offline]"
	}
	log.Println(line)
}

// tryUpgrade buys the affordable upgrade with the best hash-rate-per-coin
// ratio, if any.
func tryUpgrade(ctx context.Context, store *game.Store, engine *syncer.Engine, catalog parts.Catalog) {
	snapshot := store.Snapshot()

	best := parts.ID("")
	bestScore := 0.0
	for _, id := range parts.All {
		level := snapshot.Parts[id]
		if level >= catalog.MaxLevel(id) {
			continue
		}
		cost := catalog.UpgradeCost(id, level)
		if float64(cost) > snapshot.Balance {
			continue
		}
		if score := catalog.Efficiency(id, level); score > bestScore {
			best = id
			bestScore = score
		}
	}
	if best == "" {
		return
	}

	level := snapshot.Parts[best]
	cost := catalog.UpgradeCost(best, level)

	// Spend, then upgrade: two transitions, affordability checked above.
	store.SetBalance(snapshot.Balance - float64(cost))
	store.UpgradePart(best, level+1)

	outcome, _, err := engine.UpgradePart(ctx, best, level+1)
	if err != nil {
		log.Printf("upgrade %s -> L%d not persisted: %v", best, level+1, err)
		return
	}
	if _, _, err := engine.UpdateBalance(ctx, store.Snapshot().Balance); err != nil {
		log.Println("balance update not persisted:", err)
	}
	log.Printf("Upgraded %s to L%d for %d (%s)", best, level+1, cost, outcome)
}

func envDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
