package server

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	apikeydomain "github.com/smallbiznis/eragon/internal/apikey/domain"
	obscontext "github.com/smallbiznis/eragon/internal/observability/context"
)

const contextAPIKeyIDKey = "api_key_id"

// AdminRequired guards write endpoints. It accepts "Authorization: Token <key>" and "Bearer <key>".
func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := parseAuthorization(c.GetHeader("Authorization"))
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		key, err := s.apiKeySvc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := obscontext.WithAPIKeyID(c.Request.Context(), key.KeyID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextAPIKeyIDKey, key.KeyID)
		c.Next()
	}
}

func parseAuthorization(header string) (string, bool) {
	parts := strings.Fields(strings.TrimSpace(header))
	if len(parts) != 2 {
		return "", false
	}
	switch parts[0] {
	case "Token", "Bearer":
	default:
		return "", false
	}
	return parts[1], true
}

func isAPIKeyValidationError(err error) bool {
	return errors.Is(err, apikeydomain.ErrInvalidName) || errors.Is(err, apikeydomain.ErrInvalidKeyID)
}
