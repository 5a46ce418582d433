package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/price-ranger/internal/config"
	"github.com/Simplici0/price-ranger/internal/db"
	"github.com/Simplici0/price-ranger/internal/migrations"
	"github.com/Simplici0/price-ranger/internal/pricing"
	"github.com/Simplici0/price-ranger/internal/seed"
	"github.com/Simplici0/price-ranger/internal/store"
)

const maxBodyBytes = 1 << 20

type server struct {
	repo      store.Repository
	financing store.FinancingCatalog
	pricing   config.Pricing
	now       func() time.Time
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	srv := &server{pricing: cfg.Pricing, now: time.Now}

	switch cfg.Store {
	case "memory":
		mem := store.NewMemoryRepository(cfg.Pricing.Financing)
		if cfg.DemoBoard {
			added, err := seed.EnsureDemoBoard(ctx, mem)
			if err != nil {
				log.Fatalf("failed to load demo board: %v", err)
			}
			log.Printf("demo board loaded: %d opportunities", added)
		}
		srv.repo, srv.financing = mem, mem
	default:
		database, err := db.Open(ctx, cfg.DBPath)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer database.Close()

		if cfg.IsDev() {
			if err := migrations.Up(ctx, database, "migrations"); err != nil {
				log.Fatalf("failed to run database migrations: %v", err)
			}
		}
		version, err := migrations.Version(database)
		if err != nil {
			log.Fatalf("failed to read schema version: %v", err)
		}
		log.Printf("database schema at version %d", version)

		stats, err := seed.Run(ctx, database, seed.Config{
			Financing: cfg.Pricing.Financing,
			DemoBoard: cfg.DemoBoard,
		})
		if err != nil {
			log.Fatalf("failed to seed database: %v", err)
		}
		log.Printf("seed complete: %d inserts, %d updates", stats.Inserts, stats.Updates)

		repo := store.NewSQLiteRepository(database)
		srv.repo, srv.financing = repo, repo
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.Store)
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/pricing/payment", s.handlePayment)
		r.Post("/pricing/discount", s.handleDiscount)
		r.Post("/pricing/forward", s.handleForward)
		r.Post("/pricing/reverse", s.handleReverse)
		r.Post("/pricing/edit", s.handleEdit)
		r.Post("/pricing/promotion-check", s.handlePromotionCheck)
		r.Post("/packages", s.handlePackages)

		r.Get("/opportunities", s.handleOpportunitiesList)
		r.Put("/opportunities", s.handleOpportunitiesReplace)
		r.Get("/opportunities/{id}", s.handleOpportunityGet)
		r.Get("/opportunities/{id}/summary", s.handleOpportunitySummary)
		r.Get("/board/rollup", s.handleBoardRollup)
	})

	r.Get("/compare/{id}", s.handleCompare)
	r.Get("/quotes/{id}/text", s.handleQuoteText)
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// plans returns the financing catalog, falling back to the configured plans
// and finally to the default plan.
func (s *server) plans(ctx context.Context) []pricing.FinancingOption {
	if s.financing != nil {
		plans, err := s.financing.ListFinancing(ctx)
		if err != nil {
			log.Printf("list financing options: %v", err)
		} else if len(plans) > 0 {
			return plans
		}
	}
	if len(s.pricing.Financing) > 0 {
		return s.pricing.Financing
	}
	return []pricing.FinancingOption{s.pricing.DefaultFinancing()}
}

func (s *server) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}
