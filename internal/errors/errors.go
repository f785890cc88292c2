package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrTaxonomyUnavailable is returned when no taxonomy can be built or loaded
	ErrTaxonomyUnavailable = errors.New("taxonomy unavailable")

	// ErrVariantConflict is returned when two canonical skills claim the same variant
	ErrVariantConflict = errors.New("variant conflict")

	// ErrSourceFetch is returned when an external skill source cannot be read
	ErrSourceFetch = errors.New("skill source fetch failed")

	// ErrCacheCorrupt is returned when a cache artifact decodes but violates taxonomy invariants
	ErrCacheCorrupt = errors.New("taxonomy cache corrupt")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// TaxonomyUnavailableError explains why no taxonomy could be produced
type TaxonomyUnavailableError struct {
	Reason string
	Cause  error
}

func (e *TaxonomyUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("taxonomy unavailable: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("taxonomy unavailable: %s", e.Reason)
}

func (e *TaxonomyUnavailableError) Is(target error) bool {
	return target == ErrTaxonomyUnavailable
}

func (e *TaxonomyUnavailableError) Unwrap() error {
	return e.Cause
}

// NewTaxonomyUnavailableError creates a new TaxonomyUnavailableError
func NewTaxonomyUnavailableError(reason string, cause error) *TaxonomyUnavailableError {
	return &TaxonomyUnavailableError{Reason: reason, Cause: cause}
}

// VariantConflictError reports a variant claimed by two canonical skills with equal rank
type VariantConflictError struct {
	Variant string
	First   string
	Second  string
}

func (e *VariantConflictError) Error() string {
	return fmt.Sprintf("variant '%s' is claimed by both '%s' and '%s'", e.Variant, e.First, e.Second)
}

func (e *VariantConflictError) Is(target error) bool {
	return target == ErrVariantConflict
}

// NewVariantConflictError creates a new VariantConflictError
func NewVariantConflictError(variant, first, second string) *VariantConflictError {
	return &VariantConflictError{Variant: variant, First: first, Second: second}
}

// SourceFetchError wraps a failure of a single skill source
type SourceFetchError struct {
	Source string
	Cause  error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("skill source '%s' failed: %v", e.Source, e.Cause)
}

func (e *SourceFetchError) Is(target error) bool {
	return target == ErrSourceFetch
}

func (e *SourceFetchError) Unwrap() error {
	return e.Cause
}

// NewSourceFetchError creates a new SourceFetchError
func NewSourceFetchError(source string, cause error) *SourceFetchError {
	return &SourceFetchError{Source: source, Cause: cause}
}

// CacheCorruptError reports an artifact that failed invariant checks after decoding
type CacheCorruptError struct {
	Path   string
	Reason string
}

func (e *CacheCorruptError) Error() string {
	return fmt.Sprintf("taxonomy cache '%s' is corrupt: %s", e.Path, e.Reason)
}

func (e *CacheCorruptError) Is(target error) bool {
	return target == ErrCacheCorrupt
}

// NewCacheCorruptError creates a new CacheCorruptError
func NewCacheCorruptError(path, reason string) *CacheCorruptError {
	return &CacheCorruptError{Path: path, Reason: reason}
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
