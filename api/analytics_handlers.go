package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetAnalyticsHandler handles the request to get analytics data
func (api *API) GetAnalyticsHandler(c *gin.Context) {
	if api.analytics == nil {
		SendError(c, http.StatusNotImplemented, ErrorCodeInternalError, "Analytics are not enabled")
		return
	}
	c.JSON(http.StatusOK, api.analytics.GetDashboardData())
}
