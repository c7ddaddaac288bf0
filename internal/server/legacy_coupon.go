package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	legacycoupondomain "github.com/smallbiznis/eragon/internal/legacycoupon/domain"
)

// Handlers for the standalone /coupons/ resource kept for older frontends.

func (s *Server) ListLegacyCoupons(c *gin.Context) {
	resp, err := s.legacyCouponSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetLegacyCoupon(c *gin.Context) {
	resp, err := s.legacyCouponSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreateLegacyCoupon(c *gin.Context) {
	var req legacycoupondomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.legacyCouponSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) ReplaceLegacyCoupon(c *gin.Context) {
	s.updateLegacyCoupon(c, false)
}

func (s *Server) UpdateLegacyCoupon(c *gin.Context) {
	s.updateLegacyCoupon(c, true)
}

func (s *Server) updateLegacyCoupon(c *gin.Context, partial bool) {
	var req legacycoupondomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))
	req.Partial = partial

	resp, err := s.legacyCouponSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteLegacyCoupon(c *gin.Context) {
	if err := s.legacyCouponSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func isLegacyCouponValidationError(err error) bool {
	switch {
	case errors.Is(err, legacycoupondomain.ErrInvalidTitle),
		errors.Is(err, legacycoupondomain.ErrInvalidCode),
		errors.Is(err, legacycoupondomain.ErrInvalidDiscount),
		errors.Is(err, legacycoupondomain.ErrInvalidExpiryDate),
		errors.Is(err, legacycoupondomain.ErrDuplicateCode):
		return true
	default:
		return false
	}
}
