package handlers

import (
	"net/http"

	"github.com/username/sellfolio/backend/src/logger"
	"github.com/username/sellfolio/backend/src/services"
	"github.com/username/sellfolio/backend/src/utils"
)

type ArticleHandler struct {
	reportService services.ReportService
}

func NewArticleHandler(service services.ReportService) *ArticleHandler {
	return &ArticleHandler{
		reportService: service,
	}
}

func (h *ArticleHandler) HandleGetArticles(w http.ResponseWriter, r *http.Request) {
	scope, err := parseScope(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.reportService.Articles(scope)
	if err != nil {
		logger.L.Error("Error computing article analytics", "error", err)
		utils.SendJSONError(w, "Error computing article analytics", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, rows, http.StatusOK)
}

func (h *ArticleHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	sku := r.PathValue("sku")
	if sku == "" {
		utils.SendJSONError(w, "SKU is required", http.StatusBadRequest)
		return
	}

	scope, err := parseScope(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	history, err := h.reportService.History(sku, scope)
	if err != nil {
		logger.L.Error("Error loading SKU history", "sku", sku, "error", err)
		utils.SendJSONError(w, "Error loading SKU history", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, history, http.StatusOK)
}
