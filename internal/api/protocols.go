package api

import (
	"net/http"

	"poap_quiz_backend/internal/service"

	"github.com/gin-gonic/gin"
)

type protocolRoutes struct {
	rs service.RegistryServiceI
}

// NewProtocolRoutes exposes the public protocol catalog. Only active
// protocols with a public status are listed; the full set lives behind
// the admin routes.
func NewProtocolRoutes(handler *gin.RouterGroup, rs service.RegistryServiceI) {
	h := &protocolRoutes{rs: rs}

	handler.GET("/protocols", h.ListProtocols)
}

func (h *protocolRoutes) ListProtocols(c *gin.Context) {
	protocols, err := h.rs.ListProtocols(c.Request.Context(), false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list protocols"})
		return
	}

	response := make([]protocolResponse, len(protocols))
	for i, p := range protocols {
		response[i] = toProtocolResponse(p)
	}
	c.JSON(http.StatusOK, response)
}
