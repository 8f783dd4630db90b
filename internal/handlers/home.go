package handlers

import (
	"net/http"

	pkghttp "github.com/BradenHooton/minerva/pkg/http"
)

// Home handles GET /
func Home(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Welcome to the learning platform"})
}
