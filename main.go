package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kotochan-birthday/blob"
	"kotochan-birthday/blob/filesystem"
	"kotochan-birthday/handlers/api/birthday"
	"kotochan-birthday/handlers/api/drawings"
	"kotochan-birthday/handlers/api/photos"
	"kotochan-birthday/handlers/api/settings"
	"kotochan-birthday/handlers/api/sounds"
	"kotochan-birthday/handlers/api/stats"
	"kotochan-birthday/handlers/api/workspace"
	"kotochan-birthday/handlers/auth"
	sessionMiddleware "kotochan-birthday/middleware"
	"kotochan-birthday/session"
	"kotochan-birthday/stores"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func setupRouter(kv stores.KV, blobStore blob.Store, gate *session.Gate) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "Origin", "Host", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	requireSession := sessionMiddleware.RequireSession(gate)
	registry := workspace.NewRegistry()

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", auth.HandleLogin(gate))
			r.Get("/session", auth.HandleSession(gate))
			r.Delete("/session", auth.HandleLogout(gate))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", settings.HandleGet(kv))
			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Post("/", settings.HandleUpdate(kv))
				r.Put("/", settings.HandleUpdate(kv))
			})
		})

		r.Route("/album/photos", func(r chi.Router) {
			r.Get("/", photos.HandleList(kv))
			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Post("/", photos.HandleUpload(kv, blobStore))
				r.Delete("/", photos.HandleDelete(kv, blobStore))
			})
		})

		// Drawings intentionally take no session on writes; the canvas is
		// used without logging in.
		r.Route("/drawings", func(r chi.Router) {
			r.Get("/", drawings.HandleList(kv))
			r.Post("/", drawings.HandleSave(kv))
			r.Delete("/", drawings.HandleDelete(kv))
		})

		r.Route("/workspace", func(r chi.Router) {
			r.Post("/", registry.HandleCreate())
			r.Route("/{id}", func(r chi.Router) {
				r.Post("/snapshots", registry.HandlePush())
				r.Delete("/snapshots", registry.HandleClear())
				r.Post("/undo", registry.HandleUndo())
				r.Post("/redo", registry.HandleRedo())
				r.Get("/current", registry.HandleCurrent())
				r.Post("/save", registry.HandleSave(kv))
			})
		})

		r.Get("/sounds", sounds.HandleList())
		r.Get("/birthday", birthday.HandleInfo(birthday.BirthdayFromEnv()))

		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			r.Get("/stats", stats.HandleGet(kv, os.Getenv("STORAGE_TYPE")))
		})
	})

	// Local uploads are served straight from disk. With the s3 backend the
	// album URLs point at the bucket instead.
	if fsStore, ok := blobStore.(*filesystem.Store); ok {
		uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(fsStore.BasePath())))
		r.Get("/uploads/*", uploads.ServeHTTP)
	}

	return r
}

func waitForShutdown(server *http.Server) {
	exit := make(chan struct{})
	signalC := make(chan os.Signal, 1)

	signal.Notify(signalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range signalC {
			switch s {
			case os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				close(exit)
				return
			}
		}
	}()

	<-exit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithField("error", err).Error("Server shutdown failed")
	}
	logrus.Info("Shutting down...")
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	listenAddress := flag.String("listen", ":3002", "The address to listen on.")
	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	kv := stores.GetKV()
	blobStore := blob.GetStore()
	gate := session.NewGate(kv)

	r := setupRouter(kv, blobStore, gate)

	server := &http.Server{
		Addr:    *listenAddress,
		Handler: r,
	}

	logrus.WithField("addr", *listenAddress).Info("starting server")
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	waitForShutdown(server)
}
