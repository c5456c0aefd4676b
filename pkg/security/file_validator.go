package security

import (
	"bytes"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Extension    string
	DetectedMIME string
}

// Certificates arrive as scans or photos of paper documents
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".pdf":  {{0x25, 0x50, 0x44, 0x46}}, // %PDF
}

// MIME types http.DetectContentType reports for the allowed extensions
var allowedMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".pdf":  "application/pdf",
}

var (
	ErrNoExtension     = errors.New("file has no extension")
	ErrExtension       = errors.New("file extension not allowed")
	ErrContentMismatch = errors.New("file content does not match extension")
	ErrMIMENotAllowed  = errors.New("file type not allowed")
	ErrFileEmpty       = errors.New("file is empty")
)

// ValidateFile performs 3-layer file validation:
// 1. Extension whitelist
// 2. Magic bytes match the extension
// 3. Sniffed MIME type matches the extension (application/octet-stream rejected)
func ValidateFile(filename string, data []byte) (FileValidationResult, error) {
	var result FileValidationResult
	if len(data) == 0 {
		return result, ErrFileEmpty
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return result, ErrNoExtension
	}
	result.Extension = ext

	signatures, ok := magicBytes[ext]
	if !ok {
		return result, ErrExtension
	}

	matched := false
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig) {
			matched = true
			break
		}
	}
	if !matched {
		return result, ErrContentMismatch
	}

	result.DetectedMIME = http.DetectContentType(data)
	if result.DetectedMIME != allowedMIME[ext] {
		return result, ErrMIMENotAllowed
	}
	return result, nil
}

// IsImageExtension checks if the extension is an image type
func IsImageExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// AllowedExtensions lists the accepted extensions for error messages
func AllowedExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".pdf"}
}
