package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/username/sellfolio/backend/src/logger"
)

var ErrValidationFailed = errors.New("file validation failed")

// AllowedClientContentTypes is a map for quick lookup of allowed client-declared MIME types.
var AllowedClientContentTypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true, // .xlsx
	"application/vnd.ms-excel": true, // legacy .xls
	"application/octet-stream": true, // browsers sometimes fall back to this for drag-and-drop
}

// Magic-byte signatures for the workbook formats the parsers accept.
var (
	zipSignature = []byte{0x50, 0x4B, 0x03, 0x04}             // .xlsx is a ZIP container
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1} // legacy OLE compound file (.xls)
)

// ValidateClientContentType checks the Content-Type header provided by the client.
func ValidateClientContentType(contentType string) error {
	normalized := strings.ToLower(strings.Split(contentType, ";")[0])
	if allowed, exists := AllowedClientContentTypes[normalized]; !exists || !allowed {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("%w: client-declared file type '%s' is not allowed for workbook upload", ErrValidationFailed, contentType)
	}
	return nil
}

// ValidateFileContentByMagicBytes checks the actual file content signature.
// Only real spreadsheet containers pass; a renamed text or executable file
// fails here before any parsing runs.
func ValidateFileContentByMagicBytes(file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", fmt.Errorf("%w: file is nil", ErrValidationFailed)
	}

	buffer := make([]byte, 8)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file for content type checking: %w", err)
	}

	// Reset the file read pointer so the actual parser can read the full file.
	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}

	switch {
	case bytes.HasPrefix(buffer[:n], zipSignature):
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case bytes.HasPrefix(buffer[:n], oleSignature):
		return "application/vnd.ms-excel", nil
	}

	logger.L.Warn("File content does not match a spreadsheet signature")
	return "", fmt.Errorf("%w: file content is not a recognized spreadsheet format", ErrValidationFailed)
}
