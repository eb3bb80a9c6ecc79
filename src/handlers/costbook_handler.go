package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/username/sellfolio/backend/src/config"
	"github.com/username/sellfolio/backend/src/logger"
	"github.com/username/sellfolio/backend/src/security/validation"
	"github.com/username/sellfolio/backend/src/services"
	"github.com/username/sellfolio/backend/src/utils"
)

type CostBookHandler struct {
	pricingService services.PricingService
	exportService  services.ExportService
}

func NewCostBookHandler(pricingService services.PricingService, exportService services.ExportService) *CostBookHandler {
	return &CostBookHandler{
		pricingService: pricingService,
		exportService:  exportService,
	}
}

func (h *CostBookHandler) HandleUploadCostBook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if _, err := validation.ValidateFileContentByMagicBytes(file); err != nil {
		logger.L.Warn("Cost book upload rejected by file validation", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	count, err := h.pricingService.ImportCostBook(file)
	if err != nil {
		if errors.Is(err, services.ErrParsingFailed) {
			logger.L.Warn("Cost book failed to parse", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing cost book: %v", err), http.StatusBadRequest)
			return
		}
		logger.L.Error("Internal error importing cost book", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, "An internal error occurred while importing the cost book.", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, map[string]int{"imported": count}, http.StatusOK)
}

func (h *CostBookHandler) HandleGetCostBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.pricingService.CostBook()
	if err != nil {
		logger.L.Error("Error loading cost book", "error", err)
		utils.SendJSONError(w, "Error loading cost book", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, book, http.StatusOK)
}

func (h *CostBookHandler) HandleExportCostTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := h.exportService.CostTemplate()
	if err != nil {
		logger.L.Error("Error building cost template", "error", err)
		utils.SendJSONError(w, "Error building export", http.StatusInternalServerError)
		return
	}
	sendWorkbook(w, "Артикулы_себестоимость.xlsx", data)
}
