package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/username/sellfolio/backend/src/logger"
	"github.com/username/sellfolio/backend/src/processors"
	"github.com/username/sellfolio/backend/src/services"
	"github.com/username/sellfolio/backend/src/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PricingHandler struct {
	reportService  services.ReportService
	pricingService services.PricingService
	exportService  services.ExportService
}

func NewPricingHandler(reportService services.ReportService, pricingService services.PricingService, exportService services.ExportService) *PricingHandler {
	return &PricingHandler{
		reportService:  reportService,
		pricingService: pricingService,
		exportService:  exportService,
	}
}

// HandleSolvePrice runs the price solver over the posted inputs. A margin
// structure that can never recover costs is reported as unprocessable rather
// than a server error.
func (h *PricingHandler) HandleSolvePrice(w http.ResponseWriter, r *http.Request) {
	var input processors.PriceSolverInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.SendJSONError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	result, err := processors.SolvePrice(input)
	if err != nil {
		if errors.Is(err, processors.ErrDegenerateMargin) {
			utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		logger.L.Error("Error solving price", "error", err)
		utils.SendJSONError(w, "Error solving price", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, result, http.StatusOK)
}

func (h *PricingHandler) HandleGetCalculatorSeed(w http.ResponseWriter, r *http.Request) {
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

	seed, err := h.reportService.CalculatorSeed(sku, scope)
	if err != nil {
		logger.L.Error("Error building calculator seed", "sku", sku, "error", err)
		utils.SendJSONError(w, "Error building calculator seed", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, seed, http.StatusOK)
}

func (h *PricingHandler) HandleGetLockedPrices(w http.ResponseWriter, r *http.Request) {
	locks, err := h.pricingService.LockedPrices()
	if err != nil {
		logger.L.Error("Error loading locked prices", "error", err)
		utils.SendJSONError(w, "Error loading locked prices", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, locks, http.StatusOK)
}

func (h *PricingHandler) HandleSetLockedPrice(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SKU       string  `json:"sku"`
		SitePrice float64 `json:"sitePrice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.SKU == "" {
		utils.SendJSONError(w, "SKU is required", http.StatusBadRequest)
		return
	}
	if payload.SitePrice <= 0 {
		utils.SendJSONError(w, "Site price must be positive", http.StatusBadRequest)
		return
	}

	if err := h.pricingService.SetLockedPrice(payload.SKU, payload.SitePrice); err != nil {
		logger.L.Error("Error locking price", "sku", payload.SKU, "error", err)
		utils.SendJSONError(w, "Error locking price", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]string{"message": "Price locked"}, http.StatusOK)
}

func (h *PricingHandler) HandleRemoveLockedPrice(w http.ResponseWriter, r *http.Request) {
	sku := r.PathValue("sku")
	if sku == "" {
		utils.SendJSONError(w, "SKU is required", http.StatusBadRequest)
		return
	}

	if err := h.pricingService.RemoveLockedPrice(sku); err != nil {
		logger.L.Error("Error removing price lock", "sku", sku, "error", err)
		utils.SendJSONError(w, "Error removing price lock", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]string{"message": "Price lock removed"}, http.StatusOK)
}

func (h *PricingHandler) HandleExportAutoPromoLock(w http.ResponseWriter, r *http.Request) {
	data, err := h.exportService.AutoPromoLockSheet()
	if err != nil {
		logger.L.Error("Error building auto-promo lock sheet", "error", err)
		utils.SendJSONError(w, "Error building export", http.StatusInternalServerError)
		return
	}
	sendWorkbook(w, "Блокировка_автоакций.xlsx", data)
}

func (h *PricingHandler) HandleExportPriceChange(w http.ResponseWriter, r *http.Request) {
	data, err := h.exportService.PriceChangeSheet()
	if err != nil {
		logger.L.Error("Error building price change sheet", "error", err)
		utils.SendJSONError(w, "Error building export", http.StatusInternalServerError)
		return
	}
	sendWorkbook(w, "Изменение_цен.xlsx", data)
}

// sendWorkbook streams a built workbook as an attachment. FormatMediaType
// handles the RFC 5987 encoding the Cyrillic filenames need.
func sendWorkbook(w http.ResponseWriter, filename string, data []byte) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", disposition)
	if _, err := w.Write(data); err != nil {
		logger.L.Error("Error writing workbook response", "filename", filename, "error", err)
	}
}
