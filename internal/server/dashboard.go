package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) HandleAdminDashboard(c *gin.Context) {
	stats, err := s.dashboardSvc.Overview(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}
