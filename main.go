package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"stranded/server/internal/ground"
	"stranded/server/internal/item"
	"stranded/server/internal/storage"
	"stranded/server/logging"
	"stranded/server/logging/sinks"
)

const (
	writeWait      = 10 * time.Second
	groundTileSize = 40.0
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

func main() {
	cfg := loadConfig()
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	flag.StringVar(&cfg.CatalogPath, "items", cfg.CatalogPath, "path to an item definitions file merged over the built-ins")
	flag.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "sqlite path for inventory persistence (empty disables)")
	flag.Int64Var(&cfg.WorldSeed, "seed", cfg.WorldSeed, "world seed (0 for time-based)")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	catalog := item.DefaultCatalog()
	if cfg.CatalogPath != "" {
		if err := catalog.LoadFile(cfg.CatalogPath); err != nil {
			log.WithError(err).Fatal("failed to load item catalog")
		}
		log.WithField("path", cfg.CatalogPath).Info("merged designer item definitions")
	}

	router := buildRouter(cfg, log)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := router.Close(ctx); err != nil {
			log.WithError(err).Warn("event router did not flush cleanly")
		}
	}()

	var repo *storage.InventoryRepository
	if cfg.DatabasePath != "" {
		db, err := storage.InitSQLite(cfg.DatabasePath)
		if err != nil {
			log.WithError(err).Fatal("failed to open inventory database")
		}
		defer db.Close()
		repo = storage.NewInventoryRepository(db)
		log.WithField("path", cfg.DatabasePath).Info("inventory persistence enabled")
	}

	seed := cfg.WorldSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	field := ground.NewField(groundTileSize, seed, router)
	hub := newHub(catalog, field, router, repo, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/join", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(hub.Join()); err != nil {
			log.WithError(err).Debug("failed to write join response")
		}
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, log, w, r)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{Addr: cfg.Addr, Handler: mux}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("forced server shutdown")
		}
	}()

	log.WithField("addr", cfg.Addr).Info("stranded server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server exited")
	}
}

func buildRouter(cfg serverConfig, log *logrus.Logger) *logging.Router {
	routerCfg := logging.DefaultConfig()
	named := []logging.NamedSink{
		{Name: "console", Sink: sinks.NewConsoleSink(os.Stdout)},
	}
	if cfg.EventLogPath != "" {
		file, err := os.OpenFile(cfg.EventLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.WithError(err).Warn("event log file unavailable, continuing with console only")
		} else {
			named = append(named, logging.NamedSink{
				Name: "json",
				Sink: sinks.NewJSON(file, routerCfg.JSON.FlushInterval),
			})
			routerCfg.EnabledSinks = append(routerCfg.EnabledSinks, "json")
		}
	}

	router, err := logging.NewRouter(nil, routerCfg, named)
	if err != nil {
		log.WithError(err).Fatal("failed to build event router")
	}
	return router
}

func serveWS(hub *Hub, log *logrus.Logger, w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("id")
	if playerID == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	if _, ok := hub.Subscribe(playerID, conn); !ok {
		conn.Close()
		return
	}
	log.WithField("player", playerID).Info("player connected")

	defer func() {
		hub.Disconnect(playerID)
		log.WithField("player", playerID).Info("player disconnected")
	}()

	for {
		var cmd clientCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		hub.HandleCommand(playerID, cmd)
	}
}
