package server

import (
	"github.com/gin-gonic/gin"
	pricingtierdomain "github.com/smallbiznis/eventory/internal/pricingtier/domain"
)

func (s *Server) CreatePricingTier(c *gin.Context) {
	var req pricingtierdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	tier, err := s.pricingTierSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondCreated(c, "pricing tier created", tier)
}

func (s *Server) ListPricingTiers(c *gin.Context) {
	var req pricingtierdomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	tiers, meta, err := s.pricingTierSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, "pricing tiers fetched", tiers, meta)
}

// MatchPricingTier resolves the active tier for a location and volume.
func (s *Server) MatchPricingTier(c *gin.Context) {
	var req pricingtierdomain.MatchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	tier, err := s.pricingTierSvc.Match(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "pricing tier matched", tier)
}

func (s *Server) GetPricingTier(c *gin.Context) {
	tier, err := s.pricingTierSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "pricing tier fetched", tier)
}

func (s *Server) UpdatePricingTier(c *gin.Context) {
	var req pricingtierdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	tier, err := s.pricingTierSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "pricing tier updated", tier)
}

func (s *Server) DeactivatePricingTier(c *gin.Context) {
	tier, err := s.pricingTierSvc.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "pricing tier deactivated", tier)
}

func (s *Server) DeletePricingTier(c *gin.Context) {
	if err := s.pricingTierSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "pricing tier deleted", nil)
}
