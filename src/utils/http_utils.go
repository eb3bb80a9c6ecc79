package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/username/sellfolio/backend/src/logger"
)

// GenerateETag creates a SHA256 hash of the JSON representation of the data.
// Returns the ETag string (hex-encoded hash) and any error during JSON marshaling.
func GenerateETag(data interface{}) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal data for ETag generation: %w", err)
	}
	hash := sha256.Sum256(jsonData)
	return hex.EncodeToString(hash[:]), nil
}

// SendJSONError is a helper function to send JSON formatted error responses.
func SendJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if logger.L != nil {
		logger.L.Warn("Sending JSON error to client", "message", message, "statusCode", statusCode)
	}
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// SendJSON writes data as a JSON response with the given status code.
func SendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil && logger.L != nil {
		logger.L.Error("Error encoding JSON response", "error", err)
	}
}
