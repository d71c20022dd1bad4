package server

import (
	"github.com/gin-gonic/gin"
	branddomain "github.com/smallbiznis/eventory/internal/brand/domain"
	warehousedomain "github.com/smallbiznis/eventory/internal/warehouse/domain"
	zonedomain "github.com/smallbiznis/eventory/internal/zone/domain"
)

// -------- Brands --------

func (s *Server) CreateBrand(c *gin.Context) {
	var req branddomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	brand, err := s.brandSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondCreated(c, "brand created", brand)
}

func (s *Server) ListBrands(c *gin.Context) {
	var req branddomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	brands, meta, err := s.brandSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, "brands fetched", brands, meta)
}

func (s *Server) GetBrand(c *gin.Context) {
	brand, err := s.brandSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "brand fetched", brand)
}

func (s *Server) UpdateBrand(c *gin.Context) {
	var req branddomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	brand, err := s.brandSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "brand updated", brand)
}

func (s *Server) DeleteBrand(c *gin.Context) {
	id := c.Param("id")
	if err := s.brandSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "brand.delete", "brand", id, nil)
	respondOK(c, "brand deleted", nil)
}

// -------- Warehouses --------

func (s *Server) CreateWarehouse(c *gin.Context) {
	var req warehousedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	warehouse, err := s.warehouseSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondCreated(c, "warehouse created", warehouse)
}

func (s *Server) ListWarehouses(c *gin.Context) {
	var req warehousedomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	warehouses, meta, err := s.warehouseSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, "warehouses fetched", warehouses, meta)
}

func (s *Server) GetWarehouse(c *gin.Context) {
	warehouse, err := s.warehouseSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "warehouse fetched", warehouse)
}

func (s *Server) UpdateWarehouse(c *gin.Context) {
	var req warehousedomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	warehouse, err := s.warehouseSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "warehouse updated", warehouse)
}

func (s *Server) DeleteWarehouse(c *gin.Context) {
	id := c.Param("id")
	if err := s.warehouseSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "warehouse.delete", "warehouse", id, nil)
	respondOK(c, "warehouse deleted", nil)
}

// -------- Zones --------

func (s *Server) CreateZone(c *gin.Context) {
	var req zonedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	zone, err := s.zoneSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondCreated(c, "zone created", zone)
}

func (s *Server) ListZones(c *gin.Context) {
	var req zonedomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	zones, meta, err := s.zoneSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, "zones fetched", zones, meta)
}

func (s *Server) GetZone(c *gin.Context) {
	zone, err := s.zoneSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "zone fetched", zone)
}

func (s *Server) UpdateZone(c *gin.Context) {
	var req zonedomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	zone, err := s.zoneSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "zone updated", zone)
}

func (s *Server) DeleteZone(c *gin.Context) {
	id := c.Param("id")
	if err := s.zoneSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "zone.delete", "zone", id, nil)
	respondOK(c, "zone deleted", nil)
}
