package handler

import (
	"net/http"

	"github.com/queryai/queryai/internal/models"
	"github.com/queryai/queryai/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// recentRequestLimit caps the recent-requests listing.
const recentRequestLimit = 20

// UsageHandler handles GET /usage
type UsageHandler struct {
	store      *telemetry.Store
	demoUserID string
}

func NewUsageHandler(store *telemetry.Store, demoUserID string) *UsageHandler {
	return &UsageHandler{store: store, demoUserID: demoUserID}
}

// Usage handles GET /usage?userId=
func (h *UsageHandler) Usage(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		models.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "Database not configured",
			"message": "Set DATABASE_URL to enable usage tracking",
		})
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = r.Header.Get(callerHeader)
	}
	if userID == "" {
		userID = h.demoUserID
	}

	var (
		stats  *models.UsageStats
		recent []models.RecentRequest
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		stats, err = h.store.GetUserUsageStats(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = h.store.GetRecentRequests(ctx, userID, recentRequestLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		models.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := models.UsageResponse{RecentRequests: recent}
	if stats != nil {
		resp.Stats = *stats
	}
	if resp.RecentRequests == nil {
		resp.RecentRequests = []models.RecentRequest{}
	}

	models.WriteJSON(w, http.StatusOK, resp)
}
