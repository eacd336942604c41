package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/journal"
	"trade-journal-go/internal/models"
	"trade-journal-go/internal/stats"

	"go.uber.org/zap"
)

const userHeader = "X-User-ID"

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log     *zap.Logger
	cfg     *config.Config
	service *journal.Service
	started time.Time
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, cfg *config.Config, service *journal.Service) *APIHandler {
	return &APIHandler{log: log, cfg: cfg, service: service, started: time.Now()}
}

// Register wires every API route onto the mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/status", h.StatusHandler)

	mux.HandleFunc("GET /api/accounts", h.ListAccounts)
	mux.HandleFunc("POST /api/accounts", h.CreateAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", h.DeleteAccount)

	mux.HandleFunc("GET /api/instruments", h.ListInstruments)
	mux.HandleFunc("POST /api/instruments", h.CreateInstrument)
	mux.HandleFunc("DELETE /api/instruments/{symbol}", h.DeleteInstrument)

	mux.HandleFunc("GET /api/trades", h.ListTrades)
	mux.HandleFunc("POST /api/trades", h.CreateTrade)
	mux.HandleFunc("DELETE /api/trades", h.ClearAccountTrades)
	mux.HandleFunc("DELETE /api/trades/{id}", h.DeleteTrade)

	mux.HandleFunc("GET /api/stats", h.StatsHandler)
	mux.HandleFunc("GET /api/equity-curve", h.EquityCurveHandler)

	mux.HandleFunc("GET /api/challenges", h.ListChallenges)
	mux.HandleFunc("POST /api/challenges", h.StartChallenge)
	mux.HandleFunc("POST /api/challenges/{id}/complete", h.CompleteChallenge)
	mux.HandleFunc("POST /api/challenges/{id}/abandon", h.AbandonChallenge)

	mux.HandleFunc("GET /api/checklist", h.ChecklistMonth)
	mux.HandleFunc("GET /api/checklist/{date}", h.ChecklistDay)
	mux.HandleFunc("PUT /api/checklist/{date}", h.SaveChecklistDay)
}

// userID resolves the request's user scope: the X-User-ID header, or the
// configured default for single-user installs.
func (h *APIHandler) userID(r *http.Request) string {
	if id := r.Header.Get(userHeader); id != "" {
		return id
	}
	return h.cfg.Server.DefaultUser
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, journal.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, journal.ErrAccountHasTrades):
		status = http.StatusConflict
	case errors.Is(err, journal.ErrInvalidInput):
		status = http.StatusBadRequest
	default:
		h.log.Error("Request failed", zap.Error(err))
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	return true
}

// StatusHandler reports service health.
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"uptime":   time.Since(h.started).Round(time.Second).String(),
		"currency": h.cfg.Journal.Currency,
	})
}

// ---- Accounts ----

func (h *APIHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(h.userID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, accounts)
}

func (h *APIHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var in journal.AccountInput
	if !h.decode(w, r, &in) {
		return
	}
	account, err := h.service.CreateAccount(h.userID(r), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, account)
}

func (h *APIHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	cascade := r.URL.Query().Get("cascade") == "true"
	err := h.service.DeleteAccount(h.userID(r), r.PathValue("id"), cascade)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- Instruments ----

func (h *APIHandler) ListInstruments(w http.ResponseWriter, r *http.Request) {
	instruments, err := h.service.ListInstruments()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, instruments)
}

func (h *APIHandler) CreateInstrument(w http.ResponseWriter, r *http.Request) {
	var in journal.InstrumentInput
	if !h.decode(w, r, &in) {
		return
	}
	instrument, err := h.service.CreateInstrument(in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, instrument)
}

func (h *APIHandler) DeleteInstrument(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteInstrument(r.PathValue("symbol")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- Trades ----

func (h *APIHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.service.ListTrades(h.userID(r), r.URL.Query().Get("account"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, trades)
}

func (h *APIHandler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	var in journal.TradeInput
	if !h.decode(w, r, &in) {
		return
	}
	trade, err := h.service.CreateTrade(r.Context(), h.userID(r), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, trade)
}

func (h *APIHandler) DeleteTrade(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTrade(r.Context(), h.userID(r), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearAccountTrades deletes every trade of one account.
func (h *APIHandler) ClearAccountTrades(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account")
	if accountID == "" || accountID == stats.AllAccounts {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "account query parameter is required"})
		return
	}
	deleted, err := h.service.DeleteTradesByAccount(r.Context(), h.userID(r), accountID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

// ---- Statistics ----

func (h *APIHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Statistics(h.userID(r), r.URL.Query().Get("account"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"currency": h.cfg.Journal.Currency,
		"stats":    summary,
	})
}

func (h *APIHandler) EquityCurveHandler(w http.ResponseWriter, r *http.Request) {
	curve, err := h.service.EquityCurve(h.userID(r), r.URL.Query().Get("account"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, curve)
}

// ---- Challenges ----

func (h *APIHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	challenges, err := h.service.ListChallenges(h.userID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	// Split active from history the way the client renders them.
	active := make([]models.Challenge, 0)
	history := make([]models.Challenge, 0)
	for _, challenge := range challenges {
		if challenge.Status == models.ChallengeActive {
			active = append(active, challenge)
		} else {
			history = append(history, challenge)
		}
	}
	h.writeJSON(w, http.StatusOK, map[string][]models.Challenge{
		"active":  active,
		"history": history,
	})
}

func (h *APIHandler) StartChallenge(w http.ResponseWriter, r *http.Request) {
	var in journal.ChallengeInput
	if !h.decode(w, r, &in) {
		return
	}
	challenge, err := h.service.StartChallenge(h.userID(r), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, challenge)
}

func (h *APIHandler) CompleteChallenge(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.service.CompleteChallenge(h.userID(r), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, challenge)
}

func (h *APIHandler) AbandonChallenge(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.service.AbandonChallenge(h.userID(r), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, challenge)
}

// ---- Checklist ----

func (h *APIHandler) ChecklistDay(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.ChecklistDay(h.userID(r), r.PathValue("date"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"entry":  entry,
		"status": entry.Status(),
	})
}

func (h *APIHandler) SaveChecklistDay(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Items []models.ChecklistItem `json:"items"`
	}
	if !h.decode(w, r, &in) {
		return
	}
	entry, err := h.service.SaveChecklistDay(h.userID(r), r.PathValue("date"), in.Items)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entry)
}

func (h *APIHandler) ChecklistMonth(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	statuses, err := h.service.ChecklistMonth(h.userID(r), month)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, statuses)
}
