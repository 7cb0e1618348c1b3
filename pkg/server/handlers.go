package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/usedlot/carsearch/engine/domain"
)

// SearchResponse is the search endpoint's response envelope.
type SearchResponse struct {
	TotalResults   int              `json:"total_results"`
	Listings       domain.ResultSet `json:"listings"`
	Query          string           `json:"query,omitempty"`
	FiltersApplied domain.Criteria  `json:"filters_applied"`
}

// DetailResponse is the single-listing endpoint's response.
type DetailResponse struct {
	ListingID    string                    `json:"listing_id"`
	Title        string                    `json:"title"`
	Price        string                    `json:"price,omitempty"`
	Description  string                    `json:"description,omitempty"`
	Condition    string                    `json:"condition,omitempty"`
	LocationName string                    `json:"location_name,omitempty"`
	Attributes   *domain.VehicleAttributes `json:"vehicle_attributes,omitempty"`
	Photos       []string                  `json:"photos,omitempty"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorEnvelope{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearchPost(w http.ResponseWriter, r *http.Request) {
	var crit domain.Criteria
	if err := json.NewDecoder(r.Body).Decode(&crit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	s.runSearch(w, r, crit)
}

func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	crit, err := criteriaFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.runSearch(w, r, crit)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, crit domain.Criteria) {
	results, err := s.searcher.Search(r.Context(), crit)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) || errors.Is(err, domain.ErrInvalidCriteria) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("search failed", "error", err)
		writeError(w, http.StatusBadGateway, "search failed")
		return
	}
	if results == nil {
		results = domain.ResultSet{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		TotalResults:   len(results),
		Listings:       results,
		Query:          crit.Query,
		FiltersApplied: crit,
	})
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	if s.details == nil {
		writeError(w, http.StatusNotFound, "listing details unavailable")
		return
	}
	listingID := mux.Vars(r)["listingID"]

	payload, err := s.details.FetchDetails(r.Context(), listingID)
	if err != nil {
		s.logger.Warn("detail fetch failed", "listing_id", listingID, "error", err)
		writeError(w, http.StatusNotFound, "listing not found")
		return
	}
	l := payload.Data.Listing
	writeJSON(w, http.StatusOK, DetailResponse{
		ListingID:    listingID,
		Title:        l.Title,
		Price:        l.Price,
		Description:  l.Description,
		Condition:    l.Condition,
		LocationName: l.LocationDetails.LocationName,
		Attributes:   payload.Attributes(),
		Photos:       payload.PhotoURLs(),
	})
}

// criteriaFromQuery parses search criteria out of GET query parameters.
func criteriaFromQuery(r *http.Request) (domain.Criteria, error) {
	q := r.URL.Query()
	crit := domain.Criteria{
		Query: q.Get("query"),
		Make:  q.Get("make"),
		Model: q.Get("model"),
		State: q.Get("state"),
		City:  q.Get("city"),
	}

	var err error
	if crit.Year, err = intParam(q.Get("year")); err != nil {
		return crit, err
	}
	if crit.Limit, err = intParam(q.Get("limit")); err != nil {
		return crit, err
	}
	if crit.PickupDistance, err = intParam(q.Get("pickup_distance")); err != nil {
		return crit, err
	}
	if crit.MinMiles, err = intPtrParam(q.Get("min_miles")); err != nil {
		return crit, err
	}
	if crit.MaxMiles, err = intPtrParam(q.Get("max_miles")); err != nil {
		return crit, err
	}
	if crit.PriceMin, err = intPtrParam(q.Get("price_min")); err != nil {
		return crit, err
	}
	if crit.PriceMax, err = intPtrParam(q.Get("price_max")); err != nil {
		return crit, err
	}
	if crit.Lat, err = floatPtrParam(q.Get("lat")); err != nil {
		return crit, err
	}
	if crit.Lon, err = floatPtrParam(q.Get("lon")); err != nil {
		return crit, err
	}

	crit.Sort = domain.SortOption(q.Get("sort"))
	crit.Delivery = domain.DeliveryOption(q.Get("delivery"))
	if conds := q.Get("conditions"); conds != "" {
		for _, c := range strings.Split(conds, ",") {
			crit.Conditions = append(crit.Conditions, domain.Condition(strings.TrimSpace(c)))
		}
	}
	return crit, nil
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid integer parameter: " + raw)
	}
	return n, nil
}

func intPtrParam(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.New("invalid integer parameter: " + raw)
	}
	return &n, nil
}

func floatPtrParam(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New("invalid numeric parameter: " + raw)
	}
	return &f, nil
}
