package handler

import (
	"encoding/json"
	"net/http"

	"github.com/zentrium/assistant-engine-go/internal/domain"
	"github.com/zentrium/assistant-engine-go/internal/relay"

	"go.uber.org/zap"
)

// ============================================================
// Contact relay - POST /v1/contact
// ============================================================

func contactHandler(relaySvc *relay.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/contact")
		defer span.End()

		var sub domain.ContactSubmission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := relaySvc.Submit(ctx, &sub)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		// A mailto fallback still counts as an accepted submission;
		// the client decides what to do with the link.
		writeJSON(w, http.StatusOK, result)
	}
}
