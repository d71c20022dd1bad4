package server

import (
	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/smallbiznis/eventory/internal/analytics/domain"
)

func (s *Server) AnalyticsSummary(c *gin.Context) {
	var req analyticsdomain.RangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	summary, err := s.analyticsSvc.Summary(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "summary fetched", summary)
}

func (s *Server) AnalyticsTimeSeries(c *gin.Context) {
	var req analyticsdomain.TimeSeriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	series, err := s.analyticsSvc.TimeSeries(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "time series fetched", series)
}

func (s *Server) AnalyticsTopCompanies(c *gin.Context) {
	var req analyticsdomain.TopCompaniesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	items, err := s.analyticsSvc.TopCompanies(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "top companies fetched", items)
}

func (s *Server) AnalyticsExport(c *gin.Context) {
	var req analyticsdomain.RangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	export, err := s.analyticsSvc.ExportOrders(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "analytics.export", "analytics", export.FileName, map[string]any{
		"from": req.From,
		"to":   req.To,
	})
	respondFile(c, export.FileName, export.ContentType, export.Body)
}
