package discovery

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/amoralabs/amora-backend/internal/common/utils"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// DiscoverMatches runs the full pipeline for the seeker. The body is
// optional; without one the run uses stored preferences and defaults.
func (h *Handler) DiscoverMatches(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { RecordRequestDuration("discover_matches", time.Since(start)) }()

	seekerID, err := pathID(r, "userID")
	if err != nil {
		RecordMatchRequest("bad_request")
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	dto := &MatchRequestDTO{}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
			RecordMatchRequest("bad_request")
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		if err := utils.ValidateStruct(dto); err != nil {
			RecordMatchRequest("bad_request")
			h.respondServiceError(w, "discover matches", err)
			return
		}
	}

	run, err := h.service.DiscoverMatches(r.Context(), seekerID, dto)
	if err != nil {
		RecordMatchRequest(statusLabel(err))
		h.respondServiceError(w, "discover matches", err)
		return
	}

	RecordMatchRequest("success")
	utils.RespondWithData(w, http.StatusOK, run)
}

// GetResults returns the seeker's cached run without re-matching.
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { RecordRequestDuration("get_results", time.Since(start)) }()

	seekerID, err := pathID(r, "userID")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	run, err := h.service.GetCachedResults(r.Context(), seekerID)
	if errors.Is(err, ErrCacheMiss) {
		utils.RespondWithError(w, http.StatusNotFound, "No match results available, run matching first")
		return
	}
	if err != nil {
		h.respondServiceError(w, "get results", err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, run)
}

// GetCompatibility scores one seeker/candidate pair in detail.
func (h *Handler) GetCompatibility(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { RecordRequestDuration("get_compatibility", time.Since(start)) }()

	seekerID, err := pathID(r, "userID")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	candidateID, err := pathID(r, "candidateID")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid candidate ID")
		return
	}

	result, err := h.service.GetCompatibility(r.Context(), seekerID, candidateID)
	if err != nil {
		h.respondServiceError(w, "get compatibility", err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, result)
}

// OptimizePreferences returns tuning advice for the seeker's goals.
func (h *Handler) OptimizePreferences(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { RecordRequestDuration("optimize_preferences", time.Since(start)) }()

	seekerID, err := pathID(r, "userID")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var dto OptimizeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		h.respondServiceError(w, "optimize preferences", err)
		return
	}

	report, err := h.service.OptimizePreferences(r.Context(), seekerID, &dto)
	if err != nil {
		h.respondServiceError(w, "optimize preferences", err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, report)
}

// GetPresets lists the named criteria bundles.
func (h *Handler) GetPresets(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithData(w, http.StatusOK, h.service.GetPresets())
}

// GetStats reports candidate pool aggregates.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		h.respondServiceError(w, "get stats", err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, stats)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, action string, err error) {
	var cooldownErr *CooldownError

	switch {
	case errors.As(err, &cooldownErr):
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(cooldownErr.Remaining)))
		utils.RespondWithError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, ErrProfileNotFound), errors.Is(err, ErrCandidateNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	default:
		if verr, ok := utils.AsValidationError(err); ok {
			utils.RespondWithValidationErrors(w, verr.Violations)
			return
		}
		h.logger.Error(action+" failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
	}
}

func statusLabel(err error) string {
	switch {
	case errors.Is(err, ErrCooldownActive):
		return "cooldown"
	case errors.Is(err, ErrProfileNotFound):
		return "not_found"
	default:
		if _, ok := utils.AsValidationError(err); ok {
			return "bad_request"
		}
		return "error"
	}
}

func pathID(r *http.Request, key string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[key], 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
