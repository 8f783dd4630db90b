package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/BradenHooton/minerva/internal/models"
	"github.com/BradenHooton/minerva/internal/services"
	pkghttp "github.com/BradenHooton/minerva/pkg/http"
)

// ProxyServiceInterface defines the upstream relay the handler needs
type ProxyServiceInterface interface {
	Fetch(ctx context.Context, datasource string) (*services.UpstreamResult, error)
}

// AuthorHandler relays author data from allowlisted external sources
type AuthorHandler struct {
	service ProxyServiceInterface
}

func NewAuthorHandler(service ProxyServiceInterface) *AuthorHandler {
	return &AuthorHandler{service: service}
}

// ProxyResponse wraps a successfully relayed upstream body
type ProxyResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// GetAuthors handles GET /authors?datasource=<url>
func (h *AuthorHandler) GetAuthors(w http.ResponseWriter, r *http.Request) {
	datasource := r.URL.Query().Get("datasource")
	if datasource == "" {
		pkghttp.WriteBadRequest(w, "Missing datasource query parameter")
		return
	}

	result, err := h.service.Fetch(r.Context(), datasource)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "Datasource is not allowed")
		case errors.Is(err, models.ErrUpstreamUnreachable):
			pkghttp.WriteGatewayTimeout(w, "Datasource did not respond")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	// Upstream error statuses are mirrored back to the client
	if result.StatusCode < 200 || result.StatusCode >= 300 {
		pkghttp.WriteError(w, result.StatusCode, "datasource_error",
			fmt.Sprintf("Datasource error: %s", http.StatusText(result.StatusCode)))
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, ProxyResponse{Success: true, Data: result.Body})
}
