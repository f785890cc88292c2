package api

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationResult_AddError(t *testing.T) {
	result := &ValidationResult{Valid: true}

	result.AddError("field1", "error message 1")
	result.AddError("field2", "error message 2")

	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 2)
	assert.Equal(t, "field1", result.Errors[0].Field)
	assert.Equal(t, "error message 2", result.Errors[1].Message)
}

func TestValidationResult_HasErrors(t *testing.T) {
	result := &ValidationResult{Valid: true}
	assert.False(t, result.HasErrors())

	result.AddError("field", "error")
	assert.True(t, result.HasErrors())
}

func TestValidateTopN(t *testing.T) {
	tests := []struct {
		name    string
		topN    int
		wantErr bool
	}{
		{"zero uses default", 0, false},
		{"typical", 15, false},
		{"maximum", MaxTopN, false},
		{"negative", -1, true},
		{"too large", MaxTopN + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, ValidateTopN(tt.topN).HasErrors())
		})
	}
}

func TestValidateTextAnalysisRequest(t *testing.T) {
	empty := ""
	text := "Python"

	tests := []struct {
		name       string
		req        TextAnalysisRequest
		wantFields []string
	}{
		{"both present", TextAnalysisRequest{JobDescription: &text, Resume: &text}, nil},
		{"empty documents", TextAnalysisRequest{JobDescription: &empty, Resume: &empty}, nil},
		{"missing job description", TextAnalysisRequest{Resume: &text}, []string{"job_description"}},
		{"missing both", TextAnalysisRequest{TopN: -2}, []string{"top_n", "job_description", "resume"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateTextAnalysisRequest(&tt.req)
			var fields []string
			for _, e := range result.Errors {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestValidateUploadName(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"resume.txt", false},
		{"RESUME.TXT", false},
		{"my.resume.txt", false},
		{"resume.pdf", true},
		{"resume.docx", true},
		{"resume", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, ValidateUploadName("resume_file", tt.filename).HasErrors())
		})
	}
}

func TestDecodeUploadText(t *testing.T) {
	text, result := DecodeUploadText("f", []byte("Python und Café"))
	assert.False(t, result.HasErrors())
	assert.Equal(t, "Python und Café", text)

	text, result = DecodeUploadText("f", append([]byte{0xEF, 0xBB, 0xBF}, []byte("Go")...))
	assert.False(t, result.HasErrors())
	assert.Equal(t, "Go", text)

	text, result = DecodeUploadText("f", []byte{0xC3, 0x28})
	assert.True(t, result.HasErrors())
	assert.Empty(t, text)
	assert.Equal(t, "f", result.Errors[0].Field)
}

func TestValidateLookupTerm(t *testing.T) {
	assert.False(t, ValidateLookupTerm("k8s").HasErrors())
	assert.False(t, ValidateLookupTerm("  Google Cloud ").HasErrors())
	assert.True(t, ValidateLookupTerm("").HasErrors())
	assert.True(t, ValidateLookupTerm("   ").HasErrors())
	assert.True(t, ValidateLookupTerm(strings.Repeat("x", MaxTermLength+1)).HasErrors())
}
