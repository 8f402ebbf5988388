package utils

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/threadswap/storefront/internal/api"
)

// JSONError writes err as {"error": ...} with a status matching its kind:
// 400 for client-side validation, the backend's status for HTTP errors and
// 502 when the backend could not be reached.
func JSONError(c echo.Context, err error) error {
	var verr *api.ValidationError
	if errors.As(err, &verr) {
		body := echo.Map{"error": verr.Msg}
		if verr.Field != "" {
			body["field"] = verr.Field
		}
		return c.JSON(http.StatusBadRequest, body)
	}

	var aerr *api.Error
	if errors.As(err, &aerr) {
		if aerr.Status == 0 {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": aerr.Message})
		}
		return c.JSON(aerr.Status, echo.Map{"error": aerr.Message})
	}

	c.Logger().Errorf("unhandled error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
