package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetTaxonomyHandler returns statistics of the loaded taxonomy
func (api *API) GetTaxonomyHandler(c *gin.Context) {
	stats := api.taxonomy.TaxonomyStats()
	c.JSON(http.StatusOK, gin.H{
		"ready": stats.Entries > 0,
		"stats": stats,
	})
}

// LookupSkillHandler resolves ?term= to its canonical skill, with suggestions for near misses
func (api *API) LookupSkillHandler(c *gin.Context) {
	term := c.Query("term")
	if result := ValidateLookupTerm(term); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	lookup := api.taxonomy.LookupSkill(term)
	status := http.StatusOK
	if !lookup.Found {
		status = http.StatusNotFound
	}
	c.JSON(status, lookup)
}

// RefreshTaxonomyHandler starts a background taxonomy rebuild. While one is
// already running its job ID is returned instead of starting another.
func (api *API) RefreshTaxonomyHandler(c *gin.Context) {
	jobID, created, err := api.taxonomy.RefreshTaxonomyAsync()
	if err != nil {
		SendJobExecutionError(c, "taxonomy refresh", err)
		return
	}

	message := "Taxonomy refresh started"
	if !created {
		message = "Taxonomy refresh already in progress"
	}
	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": message,
		"job_id":  jobID,
		"created": created,
	})
}
