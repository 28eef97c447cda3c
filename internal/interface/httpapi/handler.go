package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/internal/usecase"
	"farewatch-service/pkg/logger"
	"farewatch-service/pkg/utils"
)

// Handler is the JSON boundary in front of the search and watch cores.
// It resolves user-entered place names, invokes the orchestrator and
// renders cache ids and headline offers; everything richer than that
// belongs to the chat presentation layer sitting in front of it.
type Handler struct {
	orchestrator *usecase.SearchOrchestrator
	watches      *usecase.WatchService
	cacheRepo    repository.SearchCacheRepository
	placeRepo    repository.PlaceRepository
	userRepo     repository.UserRepository
	logger       logger.Logger
	marker       string
	subID        string
}

// NewHandler creates a new API handler.
func NewHandler(
	orchestrator *usecase.SearchOrchestrator,
	watches *usecase.WatchService,
	cacheRepo repository.SearchCacheRepository,
	placeRepo repository.PlaceRepository,
	userRepo repository.UserRepository,
	logger logger.Logger,
	marker, subID string,
) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		watches:      watches,
		cacheRepo:    cacheRepo,
		placeRepo:    placeRepo,
		userRepo:     userRepo,
		logger:       logger,
		marker:       marker,
		subID:        subID,
	}
}

// Register mounts all API routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/search", h.search)
	mux.HandleFunc("GET /api/v1/searches/{id}", h.getSearch)
	mux.HandleFunc("POST /api/v1/watches", h.createWatch)
	mux.HandleFunc("GET /api/v1/watches", h.listWatches)
	mux.HandleFunc("DELETE /api/v1/watches/{id}", h.deleteWatch)
}

type searchRequest struct {
	UserID        int64  `json:"user_id"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartDate    string `json:"depart_date"`
	ReturnDate    string `json:"return_date,omitempty"`
	PassengerCode string `json:"passengers,omitempty"`
	FlightType    string `json:"flight_type,omitempty"`
}

type offerView struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	DepartureAt string `json:"departure_at,omitempty"`
	ReturnAt    string `json:"return_at,omitempty"`
	Price       int    `json:"price"`
	Airline     string `json:"airline,omitempty"`
	Transfers   int    `json:"transfers"`
	BookingURL  string `json:"booking_url"`
}

type searchResponse struct {
	SearchID      string    `json:"search_id"`
	Mode          string    `json:"mode"`
	OffersFound   int       `json:"offers_found"`
	Headline      offerView `json:"headline"`
	PassengerDesc string    `json:"passenger_desc"`
	MapURL        string    `json:"map_url,omitempty"`
	FirstTime     bool      `json:"first_time,omitempty"`
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !utils.ValidateUserDate(req.DepartDate) {
		h.writeError(w, http.StatusBadRequest, "depart_date must be DD.MM")
		return
	}
	if req.ReturnDate != "" && !utils.ValidateUserDate(req.ReturnDate) {
		h.writeError(w, http.StatusBadRequest, "return_date must be DD.MM")
		return
	}
	if req.PassengerCode == "" {
		req.PassengerCode = "1"
	}

	search := entity.SearchRequest{
		DepartDate:    req.DepartDate,
		ReturnDate:    req.ReturnDate,
		PassengerCode: req.PassengerCode,
		Filter:        parseFilter(req.FlightType),
	}

	var err error
	search.Origin, search.OriginEverywhere, err = h.resolvePlace(r.Context(), req.Origin)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "unknown origin: "+req.Origin)
		return
	}
	search.Destination, search.DestinationEverywhere, err = h.resolvePlace(r.Context(), req.Destination)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "unknown destination: "+req.Destination)
		return
	}
	if search.OriginEverywhere && search.DestinationEverywhere {
		h.writeError(w, http.StatusBadRequest, "at most one side may be everywhere")
		return
	}

	firstTime := false
	if req.UserID != 0 {
		if seen, err := h.userRepo.FirstSeen(r.Context(), req.UserID); err == nil {
			firstTime = seen
		}
	}

	result, err := h.orchestrator.Search(r.Context(), &search)
	if err != nil {
		if errors.Is(err, usecase.ErrNoOffers) {
			// Always degrade to something actionable.
			fallback := utils.BookingLink(search.Origin, search.Destination,
				search.DepartDate, search.ReturnDate, search.PassengerCode, h.marker, h.subID)
			h.writeJSON(w, http.StatusNotFound, map[string]string{
				"error":        "no offers found",
				"fallback_url": fallback,
			})
			return
		}
		h.logger.Error("Search failed", "error", err)
		h.writeError(w, http.StatusBadGateway, "search failed")
		return
	}

	resp := searchResponse{
		SearchID:      result.CacheID,
		Mode:          string(result.Mode),
		OffersFound:   len(result.Offers),
		Headline:      h.offerView(&result.Headline, &search),
		PassengerDesc: utils.DescribePassengers(search.PassengerCode),
		FirstTime:     firstTime,
	}
	if search.DestinationEverywhere {
		resp.MapURL = utils.MapLink(search.Origin, search.DepartDate, search.PassengerCode, h.marker, h.subID)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getSearch(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.cacheRepo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.writeError(w, http.StatusGone, "this search has expired, please search again")
			return
		}
		h.logger.Error("Cache lookup failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache lookup failed")
		return
	}
	h.writeJSON(w, http.StatusOK, bundle)
}

type createWatchRequest struct {
	UserID    int64  `json:"user_id"`
	SearchID  string `json:"search_id"`
	Threshold int    `json:"threshold"`
}

func (h *Handler) createWatch(w http.ResponseWriter, r *http.Request) {
	var req createWatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == 0 || req.SearchID == "" {
		h.writeError(w, http.StatusBadRequest, "user_id and search_id are required")
		return
	}

	id, watch, err := h.watches.CreateFromCache(r.Context(), req.UserID, req.SearchID, req.Threshold)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.writeError(w, http.StatusGone, "this search has expired, please search again")
			return
		}
		h.logger.Error("Watch creation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "watch creation failed")
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"watch_id": id,
		"watch":    watch,
	})
}

func (h *Handler) listWatches(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID == 0 {
		h.writeError(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}

	watches, err := h.watches.ListForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("Watch listing failed", "userId", userID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "watch listing failed")
		return
	}
	h.writeJSON(w, http.StatusOK, watches)
}

func (h *Handler) deleteWatch(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID == 0 {
		h.writeError(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}

	if err := h.watches.Remove(r.Context(), userID, r.PathValue("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "watch not found")
			return
		}
		h.logger.Error("Watch deletion failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "watch deletion failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolvePlace turns user input into an IATA code or an everywhere flag.
// Three uppercase letters pass through as a code after a directory
// check; anything else resolves as a city name.
func (h *Handler) resolvePlace(ctx context.Context, input string) (string, bool, error) {
	input = strings.TrimSpace(input)
	if strings.EqualFold(input, "everywhere") {
		return "", true, nil
	}
	if len(input) == 3 && input == strings.ToUpper(input) {
		place, err := h.placeRepo.GetByCode(ctx, input)
		if err == nil {
			return place.Code, false, nil
		}
	}
	place, err := h.placeRepo.GetByCity(ctx, input)
	if err != nil {
		return "", false, err
	}
	return place.Code, false, nil
}

func (h *Handler) offerView(offer *entity.FareOffer, req *entity.SearchRequest) offerView {
	bookingURL := utils.NormalizeBookingLink(offer.Link, req.PassengerCode)
	if bookingURL == "" {
		returnDate := ""
		if req.Mode() == entity.ModeRoute {
			returnDate = req.ReturnDate
		}
		bookingURL = utils.BookingLink(offer.Origin, offer.Destination,
			req.DepartDate, returnDate, req.PassengerCode, "", "")
	}
	bookingURL = utils.AddMarker(bookingURL, h.marker, h.subID)

	return offerView{
		Origin:      offer.Origin,
		Destination: offer.Destination,
		DepartureAt: offer.DepartureAt,
		ReturnAt:    offer.ReturnAt,
		Price:       offer.EffectivePrice(),
		Airline:     offer.Airline,
		Transfers:   offer.Transfers,
		BookingURL:  bookingURL,
	}
}

func parseFilter(s string) entity.FlightFilter {
	switch entity.FlightFilter(s) {
	case entity.FilterDirect:
		return entity.FilterDirect
	case entity.FilterTransfer:
		return entity.FilterTransfer
	default:
		return entity.FilterAll
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
