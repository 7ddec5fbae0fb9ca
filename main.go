package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"notivo/config"
	"notivo/db"
	"notivo/handlers"
	appmw "notivo/middleware"
	"notivo/store"
)

func newRouter(conn *sql.DB, secret []byte) *chi.Mux {
	auth := handlers.NewAuth(store.NewUsers(conn), secret)
	notes := handlers.NewNotes(store.NewNotes(conn))

	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/api/signup", auth.Signup)
	r.Post("/api/login", auth.Login)

	r.Group(func(r chi.Router) {
		r.Use(appmw.RequireAuth(secret))
		r.Get("/api/notes", notes.List)
		r.Post("/api/notes", notes.Create)
		r.Put("/api/notes/{id}", notes.Update)
		r.Patch("/api/notes/{id}/pin", notes.Pin)
		r.Delete("/api/notes/{id}", notes.Delete)
	})

	return r
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.Level(cfg.LogLevel),
	})))

	conn, err := db.Connect(cfg.DBPath)
	if err != nil {
		slog.Error("connecting database", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	srv := &http.Server{Addr: cfg.Addr, Handler: newRouter(conn, []byte(cfg.JWTSecret))}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server running", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}
