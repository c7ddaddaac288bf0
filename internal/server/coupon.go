package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	coupondomain "github.com/smallbiznis/eragon/internal/coupon/domain"
)

func (s *Server) ListCoupons(c *gin.Context) {
	var query struct {
		Product string `form:"product"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.couponSvc.List(c.Request.Context(), coupondomain.ListRequest{
		ProductID: strings.TrimSpace(query.Product),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetCouponByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.couponSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreateCoupon(c *gin.Context) {
	var req coupondomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.couponSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) ReplaceCoupon(c *gin.Context) {
	s.updateCoupon(c, false)
}

func (s *Server) UpdateCoupon(c *gin.Context) {
	s.updateCoupon(c, true)
}

func (s *Server) updateCoupon(c *gin.Context, partial bool) {
	var req coupondomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))
	req.Partial = partial

	resp, err := s.couponSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteCoupon(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.couponSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) LikeCoupon(c *gin.Context) {
	resp, err := s.couponSvc.RecordLike(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DislikeCoupon(c *gin.Context) {
	resp, err := s.couponSvc.RecordDislike(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UseCoupon(c *gin.Context) {
	resp, err := s.couponSvc.RecordUsage(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ResetDailyUsage(c *gin.Context) {
	affected, err := s.couponSvc.ResetDailyUsage(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reset": affected})
}

func isCouponValidationError(err error) bool {
	switch {
	case errors.Is(err, coupondomain.ErrInvalidProduct),
		errors.Is(err, coupondomain.ErrProductNotFound),
		errors.Is(err, coupondomain.ErrInvalidTitle),
		errors.Is(err, coupondomain.ErrInvalidCode),
		errors.Is(err, coupondomain.ErrInvalidDiscount),
		errors.Is(err, coupondomain.ErrInvalidURL),
		errors.Is(err, coupondomain.ErrDuplicateCode):
		return true
	default:
		return false
	}
}
