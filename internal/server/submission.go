package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/eragon/internal/observability/logger"
	submissiondomain "github.com/smallbiznis/eragon/internal/submission/domain"
	"go.uber.org/zap"
)

// SubmitStore mails a store suggestion. Delivery failures answer {success:false} with a 500
// instead of the error envelope, which the submit form relies on.
func (s *Server) SubmitStore(c *gin.Context) {
	var req submissiondomain.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	if err := s.submissionSvc.Submit(ctx, req); err != nil {
		if isSubmissionValidationError(err) {
			AbortWithError(c, err)
			return
		}
		logger.FromContext(ctx).Error("store submission failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func isSubmissionValidationError(err error) bool {
	return errors.Is(err, submissiondomain.ErrInvalidStoreName) || errors.Is(err, submissiondomain.ErrInvalidWebsite)
}
