// Command gridd runs the gridkit query service: a WebSocket endpoint
// answering pathfinding and map generation requests for game tooling.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/lawnchairsociety/gridkit/internal/config"
	"github.com/lawnchairsociety/gridkit/internal/logger"
	"github.com/lawnchairsociety/gridkit/internal/mapstore"
	"github.com/lawnchairsociety/gridkit/internal/server"
)

func main() {
	addr := flag.String("addr", ":4443", "WebSocket listen address")
	configFile := flag.String("config", "data/server.yaml", "Path to server config YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	hashToken := flag.String("hash-token", "", "Print the bcrypt hash for an access token and exit")
	noStore := flag.Bool("no-store", false, "Run without map persistence")
	flag.Parse()

	if *hashToken != "" {
		hash, err := server.HashToken(*hashToken)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error hashing token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	logConfig, _ := logger.LoadConfig(*loggingConfig)
	logger.Initialize(logConfig)

	logger.Info("Starting gridkit query service")

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load server config: %v", err)
	}

	var store *mapstore.Store
	if !*noStore {
		switch cfg.Store.Driver {
		case "postgres":
			store, err = mapstore.Open(mapstore.DialectPostgres, cfg.Store.PostgresDSN)
		default:
			store, err = mapstore.Open(mapstore.DialectSQLite, cfg.Store.SQLitePath)
		}
		if err != nil {
			log.Fatalf("Failed to open map store: %v", err)
		}
		defer store.Close()
		logger.Info("Map store opened", "driver", cfg.Store.Driver)
	}

	srv := server.New(cfg, store)
	if err := srv.StartWebSocket(*addr); err != nil {
		log.Fatalf("WebSocket server failed: %v", err)
	}
}
