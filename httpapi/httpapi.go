// Package httpapi exposes the auction service over HTTP/JSON. It owns the
// routing, the request DTOs, and the mapping from error kinds to HTTP status
// codes; all semantics live in the service layer.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Ragnarsss/auction-ms/core"
	"github.com/Ragnarsss/auction-ms/service"
)

type Handler struct {
	svc *service.Service
	log zerolog.Logger
}

func NewHandler(svc *service.Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Router configures all HTTP routes.
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", h.health).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auctions", h.listAuctions).Methods(http.MethodGet)
	api.HandleFunc("/auctions", h.createAuction).Methods(http.MethodPost)
	api.HandleFunc("/auctions/{id}", h.getAuction).Methods(http.MethodGet)
	api.HandleFunc("/auctions/{id}", h.updateAuction).Methods(http.MethodPut)
	api.HandleFunc("/auctions/{id}", h.deleteAuction).Methods(http.MethodDelete)
	api.HandleFunc("/auctions/{id}/bids", h.listBids).Methods(http.MethodGet)
	api.HandleFunc("/auctions/{id}/bids", h.createBid).Methods(http.MethodPost)
	api.HandleFunc("/auctions/{id}/bids/highest", h.getHighestBid).Methods(http.MethodGet)

	router.Use(h.requestLogging)
	return router
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

type createAuctionRequest struct {
	SellerID        string    `json:"seller_id"`
	ItemID          string    `json:"item_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	BasePrice       string    `json:"base_price"`
	MinBidIncrement string    `json:"min_bid_increment"`
	Currency        string    `json:"currency"`
}

func (h *Handler) createAuction(w http.ResponseWriter, r *http.Request) {
	var req createAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	auction, err := h.svc.CreateAuction(r.Context(), service.CreateAuctionInput{
		SellerID:        req.SellerID,
		ItemID:          req.ItemID,
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		BasePrice:       req.BasePrice,
		MinBidIncrement: req.MinBidIncrement,
		Currency:        req.Currency,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, auction)
}

func (h *Handler) listAuctions(w http.ResponseWriter, r *http.Request) {
	auctions, err := h.svc.ListAuctions(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, auctions)
}

func (h *Handler) getAuction(w http.ResponseWriter, r *http.Request) {
	auction, err := h.svc.GetAuction(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, auction)
}

type updateAuctionRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	Category        *string    `json:"category"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	BasePrice       *string    `json:"base_price"`
	MinBidIncrement *string    `json:"min_bid_increment"`
	HighestBid      *string    `json:"highest_bid"`
	Currency        *string    `json:"currency"`
	Status          *string    `json:"status"`
}

func (h *Handler) updateAuction(w http.ResponseWriter, r *http.Request) {
	var req updateAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	auction, err := h.svc.UpdateAuction(r.Context(), mux.Vars(r)["id"], service.UpdateAuctionInput{
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		BasePrice:       req.BasePrice,
		MinBidIncrement: req.MinBidIncrement,
		HighestBid:      req.HighestBid,
		Currency:        req.Currency,
		Status:          req.Status,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, auction)
}

func (h *Handler) deleteAuction(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAuction(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createBidRequest struct {
	BidderID string `json:"bidder_id"`
	Amount   string `json:"amount"`
}

func (h *Handler) createBid(w http.ResponseWriter, r *http.Request) {
	var req createBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bid, err := h.svc.CreateBid(r.Context(), mux.Vars(r)["id"], req.BidderID, req.Amount)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, bid)
}

func (h *Handler) listBids(w http.ResponseWriter, r *http.Request) {
	bids, err := h.svc.ListBids(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if bids == nil {
		bids = []*core.Bid{}
	}
	respondJSON(w, http.StatusOK, bids)
}

func (h *Handler) getHighestBid(w http.ResponseWriter, r *http.Request) {
	bid, err := h.svc.GetHighestBid(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bid)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	var coreErr *core.Error
	if !errors.As(err, &coreErr) {
		h.log.Error().Err(err).Msg("unclassified error")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if coreErr.Kind == core.KindInternal {
		// Internal causes are logged, never exposed.
		h.log.Error().Err(coreErr).Msg("internal error")
	}
	respondError(w, statusFor(coreErr.Kind), coreErr.Message)
}

func statusFor(kind core.ErrorKind) int {
	switch kind {
	case core.KindInvalidArgument:
		return http.StatusBadRequest
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindFailedPrecondition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, map[string]string{"error": message})
}

func (h *Handler) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
