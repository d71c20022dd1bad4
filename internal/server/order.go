package server

import (
	"github.com/gin-gonic/gin"
	orderdomain "github.com/smallbiznis/eventory/internal/order/domain"
)

func (s *Server) CreateOrder(c *gin.Context) {
	var req orderdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	order, err := s.orderSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondCreated(c, "order created", order)
}

func (s *Server) ListOrders(c *gin.Context) {
	var req orderdomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	orders, meta, err := s.orderSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, "orders fetched", orders, meta)
}

func (s *Server) GetOrder(c *gin.Context) {
	order, err := s.orderSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "order fetched", order)
}

func (s *Server) GetOrderHistory(c *gin.Context) {
	history, err := s.orderSvc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "order history fetched", history)
}

func (s *Server) UpdateOrder(c *gin.Context) {
	var req orderdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	order, err := s.orderSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "order updated", order)
}

func (s *Server) AddOrderItem(c *gin.Context) {
	var req orderdomain.ItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	order, err := s.orderSvc.AddItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "order item added", order)
}

func (s *Server) AdjustOrderItem(c *gin.Context) {
	var req orderdomain.AdjustItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	order, err := s.orderSvc.AdjustItem(c.Request.Context(), c.Param("id"), c.Param("itemId"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "order item adjusted", order)
}

func (s *Server) RemoveOrderItem(c *gin.Context) {
	order, err := s.orderSvc.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("itemId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "order item removed", order)
}

func (s *Server) SubmitOrder(c *gin.Context) {
	order, err := s.orderSvc.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "order submitted", order)
}

func (s *Server) OverrideOrderPricing(c *gin.Context) {
	var req orderdomain.OverridePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	order, err := s.orderSvc.OverridePricing(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "order.pricing_override", "order", order.ID.String(), map[string]any{
		"base_price": req.BasePrice.String(),
		"note":       req.Note,
	})
	respondOK(c, "order pricing updated", order)
}

func (s *Server) TransitionOrder(c *gin.Context) {
	var req orderdomain.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	order, err := s.orderSvc.Transition(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "order.transition", "order", order.ID.String(), map[string]any{"status": order.Status})
	respondOK(c, "order status updated", order)
}
