package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ajdawson/windspharm"
	"github.com/ajdawson/windspharm/internal/usecase"
)

// Handler handles HTTP requests for wind diagnostics.
type Handler struct {
	diagnosticsUC *usecase.DiagnosticsUseCase
}

// NewHandler creates a new HTTP handler.
func NewHandler(diagnosticsUC *usecase.DiagnosticsUseCase) *Handler {
	return &Handler{diagnosticsUC: diagnosticsUC}
}

// ComputeDiagnostics handles POST /v1/wind/diagnostics.
func (h *Handler) ComputeDiagnostics(c *gin.Context) {
	var req usecase.DiagnosticsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	response, err := h.diagnosticsUC.Execute(req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// statusFor maps diagnostics errors to HTTP status codes. Anything
// recognisably caused by the request is a 400.
func statusFor(err error) int {
	for _, sentinel := range []error{
		windspharm.ErrMissingValues,
		windspharm.ErrShapeMismatch,
		windspharm.ErrRank,
		windspharm.ErrInvalidGrid,
		windspharm.ErrDimensionMismatch,
		windspharm.ErrGridNotFound,
		windspharm.ErrIncompatibleField,
		windspharm.ErrInvalidParameter,
		windspharm.ErrContainerType,
	} {
		if errors.Is(err, sentinel) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// InterfaceInfo describes one registered front end.
type InterfaceInfo struct {
	Name        string `json:"name"`
	Container   string `json:"container"`
	Description string `json:"description,omitempty"`
}

// GetInterfaces handles GET /v1/interfaces.
func (h *Handler) GetInterfaces(c *gin.Context) {
	registered := windspharm.Interfaces()
	response := make([]InterfaceInfo, len(registered))
	for i, iface := range registered {
		response[i] = InterfaceInfo{
			Name:        iface.Name,
			Container:   iface.Container,
			Description: iface.Description,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"interfaces": response,
		"count":      len(response),
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": windspharm.Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
