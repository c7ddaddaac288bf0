package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) Sitemap(c *gin.Context) {
	body, err := s.sitemap.Render(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}
