package server

import (
	"github.com/gin-gonic/gin"
	citydomain "github.com/smallbiznis/eventory/internal/city/domain"
	countrydomain "github.com/smallbiznis/eventory/internal/country/domain"
)

// -------- Countries --------

func (s *Server) CreateCountry(c *gin.Context) {
	var req countrydomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	country, err := s.countrySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "country.create", "country", country.ID.String(), map[string]any{"iso_code": country.ISOCode})
	respondCreated(c, "country created", country)
}

func (s *Server) ListCountries(c *gin.Context) {
	var req countrydomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	countries, meta, err := s.countrySvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, "countries fetched", countries, meta)
}

func (s *Server) GetCountry(c *gin.Context) {
	country, err := s.countrySvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "country fetched", country)
}

func (s *Server) UpdateCountry(c *gin.Context) {
	var req countrydomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	country, err := s.countrySvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "country updated", country)
}

func (s *Server) DeactivateCountry(c *gin.Context) {
	country, err := s.countrySvc.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "country.deactivate", "country", country.ID.String(), nil)
	respondOK(c, "country deactivated", country)
}

func (s *Server) DeleteCountry(c *gin.Context) {
	id := c.Param("id")
	if err := s.countrySvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "country.delete", "country", id, nil)
	respondOK(c, "country deleted", nil)
}

// -------- Cities --------

func (s *Server) CreateCity(c *gin.Context) {
	var req citydomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	city, err := s.citySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "city.create", "city", city.ID.String(), map[string]any{"country_id": city.CountryID.String()})
	respondCreated(c, "city created", city)
}

func (s *Server) ListCities(c *gin.Context) {
	var req citydomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	cities, meta, err := s.citySvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, "cities fetched", cities, meta)
}

func (s *Server) GetCity(c *gin.Context) {
	city, err := s.citySvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "city fetched", city)
}

func (s *Server) UpdateCity(c *gin.Context) {
	var req citydomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	city, err := s.citySvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "city updated", city)
}

func (s *Server) DeactivateCity(c *gin.Context) {
	city, err := s.citySvc.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "city.deactivate", "city", city.ID.String(), nil)
	respondOK(c, "city deactivated", city)
}

func (s *Server) DeleteCity(c *gin.Context) {
	id := c.Param("id")
	if err := s.citySvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "city.delete", "city", id, nil)
	respondOK(c, "city deleted", nil)
}
