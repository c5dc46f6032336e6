package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/campuslink/points-engine/internal/services/balance"
	"github.com/campuslink/points-engine/internal/services/checkin"
	"github.com/campuslink/points-engine/internal/services/redemption"
)

// NewServer creates a configured *http.Server for the points API.
func NewServer(port uint16, balances *balance.BalanceService, checkinSvc *checkin.CheckInService, redemptionSvc *redemption.RedemptionService) *http.Server {
	mux := NewRouter(balances, checkinSvc, redemptionSvc)

	addr := fmt.Sprintf(":%d", port)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
