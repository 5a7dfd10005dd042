package httpserver

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"agriprice-service/internal/application"
	"agriprice-service/internal/domain"
	infraconfig "agriprice-service/internal/infrastructure/config"
)

type Server struct {
	recon  *application.Reconciler
	prices application.PriceRepo
	secret string
	ping   func(ctx context.Context) error
}

func NewServer(recon *application.Reconciler, prices application.PriceRepo, secret string) *Server {
	return &Server{recon: recon, prices: prices, secret: secret}
}

// WithPing wires the readiness probe to a storage ping.
func (s *Server) WithPing(ping func(ctx context.Context) error) *Server {
	s.ping = ping
	return s
}

type priceJSON struct {
	ID        string `json:"id"`
	Commodity string `json:"commodity"`
	District  string `json:"district"`
	Price     int64  `json:"price"`
	Unit      string `json:"unit"`
	Source    string `json:"source"`
	Date      string `json:"date"`
	UpdatedAt string `json:"updatedAt"`
}

func toPriceJSON(p domain.DailyPrice) priceJSON {
	return priceJSON{
		ID:        p.ID,
		Commodity: string(p.Commodity),
		District:  string(p.District),
		Price:     p.Price,
		Unit:      string(p.Unit),
		Source:    p.Source,
		Date:      p.ObservedAt.UTC().Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// authorized compares the bearer token against the configured secret.
// An unset secret rejects everything rather than opening the trigger up.
func (s *Server) authorized(r *http.Request) bool {
	if s.secret == "" {
		return false
	}
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.secret)) == 1
}

// handleCronUpdate is the scheduled-trigger endpoint: authenticate, run the
// aggregator and the default day-dedup reconcile path, report what was added.
func (s *Server) handleCronUpdate(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	res, err := s.recon.RunScheduled(r.Context())
	if err != nil {
		if errors.Is(err, application.ErrLocked) {
			writeError(w, http.StatusConflict, "sync already in progress")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	data := make([]priceJSON, 0, len(res.Created))
	for _, p := range res.Created {
		data = append(data, toPriceJSON(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"added":   res.Added(),
		"data":    data,
	})
}

// handleSyncPrices is the bulk-correct path: every aggregated quote
// overwrites the stored price for its day.
func (s *Server) handleSyncPrices(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	count, err := s.recon.SyncAll(r.Context())
	if err != nil {
		if errors.Is(err, application.ErrLocked) {
			writeError(w, http.StatusConflict, "sync already in progress")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   count,
	})
}

type addPriceRequest struct {
	Commodity string `json:"commodity"`
	District  string `json:"district"`
	Price     int64  `json:"price"`
	Unit      string `json:"unit"`
	Source    string `json:"source"`
}

// handleAddPrice is the manual admin entry, routed through the upsert path so
// an operator can correct the day's price.
func (s *Server) handleAddPrice(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body addPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	source := body.Source
	if source == "" {
		source = "Manual Entry"
	}
	q := domain.PriceQuote{
		Commodity:  domain.Commodity(body.Commodity),
		District:   domain.District(body.District),
		Price:      body.Price,
		Unit:       domain.Unit(body.Unit),
		Source:     source,
		ObservedAt: time.Now().UTC(),
	}
	rec, err := s.recon.AddPrice(r.Context(), q)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuote) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, toPriceJSON(rec))
}

func (s *Server) handleTodayPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := s.prices.Today(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	out := make([]priceJSON, 0, len(prices))
	for _, p := range prices {
		out = append(out, toPriceJSON(p))
	}
	writeJSON(w, http.StatusOK, out)
}

type historyPoint struct {
	Date      string `json:"date"`
	Price     int64  `json:"price"`
	Timestamp int64  `json:"timestamp"`
	FullDate  string `json:"fullDate"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	f := application.HistoryFilter{Days: infraconfig.DefaultHistoryDays}
	qp := r.URL.Query()
	if v := qp.Get("commodity"); v != "" {
		c := domain.Commodity(v)
		if !c.Valid() {
			writeError(w, http.StatusBadRequest, "unknown commodity")
			return
		}
		f.Commodity = c
	}
	if v := qp.Get("district"); v != "" {
		d := domain.District(v)
		if !d.Valid() {
			writeError(w, http.StatusBadRequest, "unknown district")
			return
		}
		f.District = d
	}
	if v := qp.Get("days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 || days > infraconfig.MaxHistoryDays {
			writeError(w, http.StatusBadRequest, "days out of range")
			return
		}
		f.Days = days
	}

	prices, err := s.prices.History(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	points := make([]historyPoint, 0, len(prices))
	for _, p := range prices {
		points = append(points, historyPoint{
			Date:      p.Day.Format("02 Jan"),
			Price:     p.Price,
			Timestamp: p.Day.UnixMilli(),
			FullDate:  p.Day.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, points)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
