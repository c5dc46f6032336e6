package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/campuslink/points-engine/internal/services/balance"
	"github.com/campuslink/points-engine/internal/services/checkin"
	"github.com/campuslink/points-engine/internal/services/redemption"
)

// NewRouter constructs the router with all core endpoints registered.
func NewRouter(balances *balance.BalanceService, checkinSvc *checkin.CheckInService, redemptionSvc *redemption.RedemptionService) http.Handler {
	h := NewHandler(balances, checkinSvc, redemptionSvc)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/account/{accountId}/balance", h.GetBalanceHandler)
	r.Get("/account/{accountId}/ledger", h.GetLedgerHandler)
	r.Post("/account/{accountId}/redemption", h.RedeemHandler)
	r.Post("/event/{eventId}/checkin", h.CheckInHandler)

	return r
}
