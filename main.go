package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"canva-clone/auth"
	"canva-clone/config"
	"canva-clone/core"
	"canva-clone/export"
	"canva-clone/handlers/api/designs"
	"canva-clone/handlers/api/kv"
	recentapi "canva-clone/handlers/api/recent"
	"canva-clone/handlers/websocket"
	"canva-clone/mcpserver"
	authMiddleware "canva-clone/middleware"
	"canva-clone/recent"
	"canva-clone/session"
	"canva-clone/stores"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type app struct {
	store    core.KeyValueStore
	recent   *recent.Registry
	capturer *export.Capturer
	sessions *session.Manager
}

func setupRouter(a *app) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "X-CSRF-Token", "Origin", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.AuthJWT)
		r.Mount("/sessions", designs.Routes(a.sessions))
		r.Mount("/recent", recentapi.Routes(a.recent, a.capturer))
		r.Route("/v2/kv", func(r chi.Router) {
			r.Get("/", kv.HandleList(a.store))
			r.Route("/{key}", func(r chi.Router) {
				r.Get("/", kv.HandleGet(a.store))
				r.Put("/", kv.HandlePut(a.store))
				r.Delete("/", kv.HandleDelete(a.store))
			})
		})
	})

	return r
}

// waitForShutdown blocks until a signal arrives or done is closed, then
// stops the servers and saves open sessions.
func waitForShutdown(done <-chan struct{}, srv *http.Server, hub *websocket.Hub, autosaver *session.Autosaver, a *app) {
	signalC := make(chan os.Signal, 1)
	signal.Notify(signalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	select {
	case s := <-signalC:
		logrus.WithField("signal", s.String()).Info("Shutting down")
	case <-done:
		logrus.Info("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if autosaver != nil {
		autosaver.Stop(ctx)
	}
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			logrus.WithError(err).Warn("HTTP shutdown incomplete")
		}
	}
	if hub != nil {
		hub.Close()
	}
	if n := a.sessions.AutosaveDirty(ctx); n > 0 {
		logrus.WithField("saved", n).Info("Saved open sessions")
	}
	if err := a.store.Close(); err != nil {
		logrus.WithError(err).Warn("Failed to close storage")
	}
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	listenAddress := flag.String("listen", ":3002", "The address to listen on.")
	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	mcpMode := flag.Bool("mcp", false, "Serve MCP tools on stdin/stdout instead of HTTP.")
	mcpOwner := flag.String("mcp-owner", authMiddleware.AnonymousOwner, "Owner of sessions opened through MCP.")
	issueToken := flag.String("issue-token", "", "Print a signed API token for this subject and exit.")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	cfg := config.Load()
	auth.Init(cfg.JWTSecret)

	if *issueToken != "" {
		token, err := auth.CreateJWT(*issueToken, "", auth.DefaultTTL)
		if err != nil {
			logrus.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Println(token)
		return
	}

	ctx := context.Background()
	store, err := stores.Open(ctx, cfg.Storage)
	if err != nil {
		logrus.Fatalf("Failed to open storage: %v", err)
	}

	registry := recent.NewRegistry(store, cfg.RecentDesignsKey)
	if err := registry.Load(ctx); err != nil {
		logrus.WithError(err).Warn("Failed to load recent designs")
	}
	capturer := export.NewCapturer(store, export.DefaultThumbWidth, export.DefaultThumbHeight)

	a := &app{
		store:    store,
		recent:   registry,
		capturer: capturer,
		sessions: session.NewManager(store,
			session.WithRecent(registry),
			session.WithCapturer(capturer),
			session.WithHistoryLimit(cfg.HistoryLimit),
		),
	}

	var autosaver *session.Autosaver
	if cfg.AutosaveSchedule != "" {
		autosaver, err = session.NewAutosaver(a.sessions, cfg.AutosaveSchedule)
		if err != nil {
			logrus.Fatalf("Failed to schedule autosave: %v", err)
		}
		autosaver.Start()
	}

	if *mcpMode {
		srv := mcpserver.New(a.sessions, *mcpOwner)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := srv.ServeStdio(); err != nil {
				logrus.WithError(err).Error("MCP server stopped")
			}
		}()
		waitForShutdown(done, nil, nil, autosaver, a)
		return
	}

	r := setupRouter(a)
	hub := websocket.NewHub(a.sessions)
	r.Mount("/socket.io/", hub.Server().ServeHandler(nil))

	httpServer := &http.Server{Addr: *listenAddress, Handler: r}
	logrus.WithField("addr", *listenAddress).Info("starting server")
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	logrus.Debug("Server is running in the background")
	waitForShutdown(nil, httpServer, hub, autosaver, a)
}
