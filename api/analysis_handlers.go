package api

import (
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gcbaptista/skillmatch/model"
)

const (
	jobDescriptionField = "job_description_file"
	resumeField         = "resume_file"

	eventSourceUpload = "upload"
	eventSourceText   = "text"
)

// TextAnalysisRequest is the JSON body of POST /analysis/text.
// Pointers distinguish a missing document from an empty one.
type TextAnalysisRequest struct {
	JobDescription *string `json:"job_description"`
	Resume         *string `json:"resume"`
	TopN           int     `json:"top_n"`
}

// ExtractRequest is the JSON body of POST /extract
type ExtractRequest struct {
	Text string `json:"text"`
}

// AnalysisResponse is the answer to both analysis routes
type AnalysisResponse struct {
	TopKeywords     []string   `json:"top_keywords"`
	MatchedKeywords []string   `json:"matched_keywords"`
	MissingKeywords []string   `json:"missing_keywords"`
	MatchScore      float64    `json:"match_score"`
	MatchRatio      string     `json:"match_ratio"`
	Classification  model.Band `json:"classification"`
	Explanation     string     `json:"explanation"`
	ConfidenceNotes string     `json:"confidence_notes"`
	Summary         string     `json:"summary"`
	JobSkills       []string   `json:"job_skills"`
	ResumeSkills    []string   `json:"resume_skills"`
}

func newAnalysisResponse(a *model.Analysis) AnalysisResponse {
	return AnalysisResponse{
		TopKeywords:     a.TopKeywords,
		MatchedKeywords: a.MatchedKeywords,
		MissingKeywords: a.MissingKeywords,
		MatchScore:      a.MatchScore,
		MatchRatio:      a.MatchRatio,
		Classification:  a.Classification,
		Explanation:     a.Explanation,
		ConfidenceNotes: a.ConfidenceNotes,
		Summary:         a.Summary,
		JobSkills:       a.JobSkills,
		ResumeSkills:    a.ResumeSkills,
	}
}

// AnalyzeUploadHandler compares an uploaded job description with an uploaded resume.
// Both files must be UTF-8 .txt files.
func (api *API) AnalyzeUploadHandler(c *gin.Context) {
	start := api.now()

	jobText, ok := api.readUpload(c, jobDescriptionField)
	if !ok {
		return
	}
	resumeText, ok := api.readUpload(c, resumeField)
	if !ok {
		return
	}

	api.respondWithAnalysis(c, jobText, resumeText, 0, eventSourceUpload, start)
}

// AnalyzeTextHandler compares a job description with a resume given as JSON text
func (api *API) AnalyzeTextHandler(c *gin.Context) {
	start := api.now()

	var req TextAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if isBodyTooLarge(err) {
			sendBodyTooLarge(c)
			return
		}
		SendInvalidJSONError(c, err)
		return
	}
	if result := ValidateTextAnalysisRequest(&req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	api.respondWithAnalysis(c, *req.JobDescription, *req.Resume, req.TopN, eventSourceText, start)
}

// ExtractHandler returns the skills found in one document
func (api *API) ExtractHandler(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if isBodyTooLarge(err) {
			sendBodyTooLarge(c)
			return
		}
		SendInvalidJSONError(c, err)
		return
	}

	result, err := api.analyzer.Extract(req.Text)
	if err != nil {
		SendEngineError(c, "skill extraction", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"skills":     result.Skills,
		"canonicals": result.Canonicals(),
		"total":      result.Len(),
	})
}

func (api *API) respondWithAnalysis(c *gin.Context, jobText, resumeText string, topN int, source string, start time.Time) {
	analysis, err := api.analyzer.Analyze(jobText, resumeText, topN)
	if err != nil {
		SendEngineError(c, "analysis", err)
		return
	}

	elapsed := api.now().Sub(start)
	if api.analytics != nil {
		api.analytics.TrackAnalysis(model.AnalysisEvent{
			Source:       source,
			Score:        analysis.MatchScore,
			Band:         analysis.Classification,
			JobSkills:    len(analysis.JobSkills),
			ResumeSkills: len(analysis.ResumeSkills),
			Matched:      analysis.MatchedKeywords,
			Missing:      analysis.MissingKeywords,
			ResponseTime: elapsed,
		})
	}

	api.logger.WithFields(logrus.Fields{
		"source":      source,
		"match_score": analysis.MatchScore,
		"job_skills":  len(analysis.JobSkills),
		"request_id":  c.GetString(requestIDKey),
	}).Debug("Analysis completed")

	c.JSON(http.StatusOK, newAnalysisResponse(analysis))
}

// readUpload reads one multipart text file. On failure the error response is
// already written and ok is false.
func (api *API) readUpload(c *gin.Context, field string) (string, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		if isBodyTooLarge(err) {
			sendBodyTooLarge(c)
			return "", false
		}
		result := &ValidationResult{Valid: true}
		result.AddError(field, "File is required")
		SendValidationError(c, result)
		return "", false
	}

	if result := ValidateUploadName(field, header.Filename); result.HasErrors() {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidFile, result.Errors[0].Message,
			ErrorDetail{Field: field, Message: result.Errors[0].Message})
		return "", false
	}

	content, err := readMultipartFile(header)
	if err != nil {
		SendInternalError(c, "reading "+field, err)
		return "", false
	}

	text, result := DecodeUploadText(field, content)
	if result.HasErrors() {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidFile, result.Errors[0].Message,
			ErrorDetail{Field: field, Message: result.Errors[0].Message})
		return "", false
	}
	return text, true
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", header.Filename, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", header.Filename, err)
	}
	return content, nil
}

func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return stderrors.As(err, &maxBytesErr)
}

func sendBodyTooLarge(c *gin.Context) {
	SendError(c, http.StatusRequestEntityTooLarge, ErrorCodeRequestTooLarge, "Request body is too large")
}
