package api

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
)

const (
	// MaxTopN caps the number of top keywords a request may ask for
	MaxTopN = 100
	// MaxTermLength caps taxonomy lookup terms
	MaxTermLength = 100

	allowedUploadExtension = ".txt"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds validation results
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

// ValidateTopN checks an optional top_n value. Zero means the configured default.
func ValidateTopN(topN int) *ValidationResult {
	result := &ValidationResult{Valid: true}
	if topN < 0 {
		result.AddError("top_n", "top_n cannot be negative")
	}
	if topN > MaxTopN {
		result.AddError("top_n", fmt.Sprintf("top_n cannot exceed %d", MaxTopN))
	}
	return result
}

// ValidateTextAnalysisRequest validates a JSON analysis request.
// Empty documents are accepted and simply yield no skills.
func ValidateTextAnalysisRequest(req *TextAnalysisRequest) *ValidationResult {
	result := ValidateTopN(req.TopN)
	if req.JobDescription == nil {
		result.AddError("job_description", "job_description is required")
	}
	if req.Resume == nil {
		result.AddError("resume", "resume is required")
	}
	return result
}

// ValidateUploadName accepts plain text uploads only
func ValidateUploadName(field, filename string) *ValidationResult {
	result := &ValidationResult{Valid: true}
	if filename == "" {
		result.AddError(field, "File name is required")
		return result
	}
	if !strings.EqualFold(filepath.Ext(filename), allowedUploadExtension) {
		result.AddError(field, fmt.Sprintf("Only %s files are supported, got '%s'", allowedUploadExtension, filename))
	}
	return result
}

// DecodeUploadText checks that content is UTF-8 and strips a leading byte order mark
func DecodeUploadText(field string, content []byte) (string, *ValidationResult) {
	result := &ValidationResult{Valid: true}
	content = bytes.TrimPrefix(content, utf8BOM)
	if !utf8.Valid(content) {
		result.AddError(field, "File content must be UTF-8 encoded text")
		return "", result
	}
	return string(content), result
}

// ValidateLookupTerm validates a taxonomy lookup term
func ValidateLookupTerm(term string) *ValidationResult {
	result := &ValidationResult{Valid: true}
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		result.AddError("term", "term is required and cannot be empty")
		return result
	}
	if utf8.RuneCountInString(trimmed) > MaxTermLength {
		result.AddError("term", fmt.Sprintf("term cannot exceed %d characters", MaxTermLength))
	}
	return result
}

// SendValidationError sends a standardized validation error response
func SendValidationError(c *gin.Context, result *ValidationResult) {
	SendStructuredValidationError(c, result)
}

// ValidateJSONBinding validates JSON binding and returns a standardized error
func ValidateJSONBinding(c *gin.Context, target interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if err := c.ShouldBindJSON(target); err != nil {
		result.AddError("request_body", "Invalid request body: "+err.Error())
	}

	return result
}
