package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campuslink/points-engine/internal/repos/accounts"
	"github.com/campuslink/points-engine/internal/repos/checkins"
	"github.com/campuslink/points-engine/internal/repos/events"
	"github.com/campuslink/points-engine/internal/services/balance"
	"github.com/campuslink/points-engine/internal/services/checkin"
	"github.com/campuslink/points-engine/internal/services/redemption"
)

// HandlerProvider wraps the core services and exposes HTTP handlers.
type HandlerProvider struct {
	balances    *balance.BalanceService
	checkins    *checkin.CheckInService
	redemptions *redemption.RedemptionService
}

// NewHandler returns a new handler provider.
func NewHandler(balances *balance.BalanceService, checkinSvc *checkin.CheckInService, redemptionSvc *redemption.RedemptionService) *HandlerProvider {
	return &HandlerProvider{
		balances:    balances,
		checkins:    checkinSvc,
		redemptions: redemptionSvc,
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)

		http.Error(w, `{"error":"internal json encode failure"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseIDFromPath reads a positive int64 path parameter from chi routes
// like GET /account/{accountId}/balance.
func parseIDFromPath(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s", name)
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", name)
	}

	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty body")
		}

		return fmt.Errorf("invalid JSON")
	}

	return nil
}

// --- Handlers ---

// GetBalanceHandler handles GET /account/{accountId}/balance
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseIDFromPath(r, "accountId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	bal, err := h.balances.BalanceOf(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accountId": bal.AccountID,
		"current":   bal.Current,
		"earned":    bal.Earned,
		"spent":     bal.Spent,
	})
}

type ledgerEntryResponse struct {
	ID        int64     `json:"id"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

// GetLedgerHandler handles GET /account/{accountId}/ledger?limit=
func (h *HandlerProvider) GetLedgerHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseIDFromPath(r, "accountId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > 500 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	entries, err := h.balances.History(r.Context(), accountID, limit)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]ledgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, ledgerEntryResponse{
			ID:        e.ID,
			Amount:    e.Amount,
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": resp})
}

type checkinRequest struct {
	AccountID int64  `json:"accountId"`
	Proof     string `json:"proof"`
}

// CheckInHandler handles POST /event/{eventId}/checkin
func (h *HandlerProvider) CheckInHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIDFromPath(r, "eventId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid eventId in path")
		return
	}

	var req checkinRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.AccountID <= 0 {
		writeError(w, http.StatusBadRequest, "accountId required")
		return
	}

	// The proof token is validated by the QR layer upstream; here it only
	// needs to be present. The time window is re-derived from the event
	// row regardless of what the proof claims.
	if req.Proof == "" {
		writeError(w, http.StatusBadRequest, "proof required")
		return
	}

	res, err := h.checkins.CheckIn(r.Context(), eventID, req.AccountID)
	if err != nil {
		switch {
		case errors.Is(err, checkins.ErrAlreadyCheckedIn):
			writeError(w, http.StatusConflict, "already checked in")
			return
		case errors.Is(err, checkin.ErrOutsideWindow):
			writeError(w, http.StatusConflict, "outside check-in window")
			return
		case errors.Is(err, checkin.ErrNotRegistered):
			writeError(w, http.StatusForbidden, "not registered for event")
			return
		case errors.Is(err, accounts.ErrAccountInactive):
			writeError(w, http.StatusForbidden, "account deactivated")
			return
		case errors.Is(err, accounts.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, "account not found")
			return
		case errors.Is(err, events.ErrEventNotFound):
			writeError(w, http.StatusNotFound, "event not found")
			return
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	resp := map[string]any{
		"pointsAwarded":     res.PointsAwarded,
		"dailyCheckinCount": res.DailyCheckinCount,
	}
	if res.Restricted {
		resp["reason"] = "restricted"
	}

	writeJSON(w, http.StatusOK, resp)
}

type redeemRequest struct {
	CouponID int64 `json:"couponId"`
}

// RedeemHandler handles POST /account/{accountId}/redemption
func (h *HandlerProvider) RedeemHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseIDFromPath(r, "accountId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	var req redeemRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.CouponID <= 0 {
		writeError(w, http.StatusBadRequest, "couponId required")
		return
	}

	rec, err := h.redemptions.Redeem(r.Context(), accountID, req.CouponID)
	if err != nil {
		var insufficient *redemption.InsufficientBalanceError

		switch {
		case errors.As(err, &insufficient):
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":    "insufficient balance",
				"current":  insufficient.Current,
				"required": insufficient.Required,
			})
			return
		case errors.Is(err, redemption.ErrCouponUnavailable):
			writeError(w, http.StatusConflict, "coupon unavailable")
			return
		case errors.Is(err, redemption.ErrAccountRestricted):
			writeError(w, http.StatusForbidden, "account restricted")
			return
		case errors.Is(err, accounts.ErrAccountInactive):
			writeError(w, http.StatusForbidden, "account deactivated")
			return
		case errors.Is(err, accounts.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, "account not found")
			return
		case errors.Is(err, redemption.ErrCodeGeneration):
			writeError(w, http.StatusInternalServerError, "could not issue code")
			return
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"redemptionId": rec.RedemptionID,
		"code":         rec.Code,
		"expiresAt":    rec.ExpiresAt,
		"pointsSpent":  rec.PointsSpent,
		"balance":      rec.Balance,
	})
}
