package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/username/sellfolio/backend/src/config"
	"github.com/username/sellfolio/backend/src/logger"
	"github.com/username/sellfolio/backend/src/models"
	"github.com/username/sellfolio/backend/src/security/validation"
	"github.com/username/sellfolio/backend/src/services"
	"github.com/username/sellfolio/backend/src/utils"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(service services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: service,
	}
}

// HandleUpload accepts one or more workbook files under the 'files' multipart
// field and ingests each as a separate report.
func (h *ReportHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		utils.SendJSONError(w, "No files in request. Ensure 'files' field is used.", http.StatusBadRequest)
		return
	}

	uploaded := make([]*models.ReportFile, 0, len(fileHeaders))
	for _, fileHeader := range fileHeaders {
		reportFile, err := h.ingestOne(fileHeader)
		if err != nil {
			if errors.Is(err, validation.ErrValidationFailed) {
				logger.L.Warn("Upload rejected by file validation", "filename", fileHeader.Filename, "error", err)
				utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			} else if errors.Is(err, services.ErrParsingFailed) {
				logger.L.Warn("Upload failed to parse", "filename", fileHeader.Filename, "error", err)
				utils.SendJSONError(w, fmt.Sprintf("Error parsing workbook %q: %v", fileHeader.Filename, err), http.StatusBadRequest)
			} else {
				logger.L.Error("Internal error processing upload", "filename", fileHeader.Filename, "error", err)
				utils.SendJSONError(w, "An internal error occurred while processing the file. Please try again later.", http.StatusInternalServerError)
			}
			return
		}
		uploaded = append(uploaded, reportFile)
	}

	utils.SendJSON(w, uploaded, http.StatusOK)
}

func (h *ReportHandler) ingestOne(fileHeader *multipart.FileHeader) (*models.ReportFile, error) {
	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		return nil, fmt.Errorf("%w: file %q exceeds the %d MB limit", validation.ErrValidationFailed, fileHeader.Filename, config.Cfg.MaxUploadSizeBytes/(1024*1024))
	}

	if contentType := fileHeader.Header.Get("Content-Type"); contentType != "" {
		if err := validation.ValidateClientContentType(contentType); err != nil {
			return nil, err
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening uploaded file: %w", err)
	}
	defer file.Close()

	if _, err := validation.ValidateFileContentByMagicBytes(file); err != nil {
		return nil, err
	}

	return h.reportService.ProcessUpload(file, fileHeader.Filename)
}

func (h *ReportHandler) HandleListReports(w http.ResponseWriter, r *http.Request) {
	files, err := h.reportService.ListReports()
	if err != nil {
		logger.L.Error("Error listing reports", "error", err)
		utils.SendJSONError(w, "Error retrieving report list", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, files, http.StatusOK)
}

func (h *ReportHandler) HandleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.SendJSONError(w, "Report id is required", http.StatusBadRequest)
		return
	}

	if err := h.reportService.DeleteReport(id); err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			utils.SendJSONError(w, fmt.Sprintf("Report %q not found", id), http.StatusNotFound)
			return
		}
		logger.L.Error("Error deleting report", "reportID", id, "error", err)
		utils.SendJSONError(w, "Error deleting report", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]string{"message": "Report deleted successfully"}, http.StatusOK)
}

func (h *ReportHandler) HandleClearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.reportService.ClearAll(); err != nil {
		logger.L.Error("Error clearing report data", "error", err)
		utils.SendJSONError(w, "Error clearing report data", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]string{"message": "All report data cleared"}, http.StatusOK)
}

func (h *ReportHandler) HandleGetPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.reportService.Period()
	if err != nil {
		logger.L.Error("Error computing report period", "error", err)
		utils.SendJSONError(w, "Error computing report period", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, period, http.StatusOK)
}
