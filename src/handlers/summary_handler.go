package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/username/sellfolio/backend/src/logger"
	"github.com/username/sellfolio/backend/src/services"
	"github.com/username/sellfolio/backend/src/utils"
)

type SummaryHandler struct {
	reportService services.ReportService
}

func NewSummaryHandler(service services.ReportService) *SummaryHandler {
	return &SummaryHandler{
		reportService: service,
	}
}

// HandleGetSummary returns the dashboard totals and the by-operation table for
// the requested scope, with ETag support so an unchanged dashboard costs a 304.
func (h *SummaryHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	scope, err := parseScope(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	sku := r.URL.Query().Get("sku")

	summary, err := h.reportService.Summary(scope, sku)
	if err != nil {
		logger.L.Error("Error computing summary", "error", err)
		utils.SendJSONError(w, "Error computing summary", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	currentETag, etagErr := utils.GenerateETag(summary)
	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		for _, clientETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(clientETag) == quotedETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	} else if etagErr != nil {
		logger.L.Warn("Proceeding without ETag check due to ETag generation error", "error", etagErr)
	}

	utils.SendJSON(w, summary, http.StatusOK)
}
