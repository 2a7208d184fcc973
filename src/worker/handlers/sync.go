package handlers

import (
	"context"
	"errors"
	"net/http"

	"analytics-sync/src/services"
	"analytics-sync/src/utils"
)

// RunSync triggers a full sync run out of schedule. The run itself happens
// in the background; a second trigger while one is in flight is rejected.
func (h *Handler) RunSync(w http.ResponseWriter, r *http.Request) {
	go func() {
		// Detached from the request context so closing the connection does
		// not cancel a run already under way.
		runCtx := utils.WithLogger(context.Background(), h.Logger)
		if err := h.SyncService.RunAll(runCtx); err != nil {
			if errors.Is(err, services.ErrRunInProgress) {
				h.Logger.Warn("Manual sync trigger ignored, run already in progress")
				return
			}
			h.Logger.WithError(err).Error("Manual sync run failed")
		}
	}()

	w.WriteHeader(http.StatusAccepted)
}
