package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Preflight answers CORS preflight requests with 200 and no body. The
// headers themselves come from the global CORS middleware.
func Preflight(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}
