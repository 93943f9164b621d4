// Package api serves read-only profile lookups over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/polymedia/polymedia-profile/internal/metrics"
	"github.com/polymedia/polymedia-profile/pkg/profile"
)

const (
	// MaxBatchAddresses bounds the addresses accepted by one batch request.
	MaxBatchAddresses = 1000
	maxBodyBytes      = 1 << 20
)

// ProfileLookup is the subset of *profile.Client the handlers need.
type ProfileLookup interface {
	GetProfileByOwner(ctx context.Context, address string, useCache bool) (*profile.Profile, error)
	GetProfilesByOwner(ctx context.Context, addresses []string, useCache bool) (*profile.Results, error)
	GetProfileObjectByID(ctx context.Context, objectID string) (*profile.Profile, error)
}

var _ ProfileLookup = (*profile.Client)(nil)

type Handler struct {
	profiles ProfileLookup
	log      *zap.Logger
}

func NewHandler(profiles ProfileLookup, log *zap.Logger) *Handler {
	return &Handler{profiles: profiles, log: log.Named("api")}
}

// BatchRequest is the body of POST /v1/owners/profiles.
type BatchRequest struct {
	Addresses []string `json:"addresses"`
}

// OwnerProfile is one entry of a batch response. Profile is null when the
// address has no profile.
type OwnerProfile struct {
	Address string           `json:"address"`
	Profile *profile.Profile `json:"profile"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Routes registers every endpoint, each wrapped with the response counter.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	handle := func(method, route string, fn http.HandlerFunc) {
		mux.Handle(method+" "+route, metrics.Middleware(fn, route))
	}
	handle(http.MethodGet, "/v1/owners/{address}/profile", h.getProfileByOwner)
	handle(http.MethodPost, "/v1/owners/profiles", h.getProfilesByOwner)
	handle(http.MethodGet, "/v1/profiles/{id}", h.getProfileByID)
	mux.Handle("GET /metrics", metrics.Handler())
	return mux
}

func (h *Handler) getProfileByOwner(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.GetProfileByOwner(r.Context(), r.PathValue("address"), useCache(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "profile not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) getProfileByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.GetProfileObjectByID(r.Context(), r.PathValue("id"))
	var decodingErr *profile.DecodingError
	if errors.As(err, &decodingErr) {
		// Any object id can be requested; one that is not a profile is not found.
		h.log.Debug("Requested object is not a profile", zap.String("objectId", decodingErr.ObjectID), zap.String("reason", decodingErr.Reason))
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "object is not a profile"})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "profile not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) getProfilesByOwner(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if len(req.Addresses) > MaxBatchAddresses {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "too many addresses, max " + strconv.Itoa(MaxBatchAddresses)})
		return
	}

	results, err := h.profiles.GetProfilesByOwner(r.Context(), req.Addresses, useCache(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]OwnerProfile, 0, results.Len())
	results.Range(func(address string, p *profile.Profile) bool {
		out = append(out, OwnerProfile{Address: address, Profile: p})
		return true
	})
	writeJSON(w, http.StatusOK, out)
}

// useCache is false only for ?cache=false.
func useCache(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("cache"))
	return err != nil || v
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, profile.ErrInvalidAddress) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	h.log.Error("Profile lookup failed", zap.String("path", r.URL.Path), zap.Error(err))
	writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
