package web

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/soncatalog/internal/common"
	"github.com/labstack/echo/v4"
)

// Client-facing messages. Internal details stay in the logs.
const (
	msgLoginFailed      = "Login failed"
	msgInvalidInput     = "Məlumatlar düzgün deyil"
	msgNotFound         = "Tapılmadı"
	msgCategoryNotEmpty = "Bu kateqoriyada məhsullar var. Əvvəlcə onları başqa kateqoriyaya köçürün."
	msgConflict         = "Bu adda qeyd artıq mövcuddur"
	msgUnsupportedMedia = "Dəstəklənməyən fayl formatı. Yalnız JPEG, PNG və WebP faylları qəbul edilir."
	msgTooLarge         = "Fayl ölçüsü böyükdür. Maksimum 5MB icazə verilir."
	msgInternal         = "Xəta baş verdi. Zəhmət olmasa bir az sonra yenidən cəhd edin."
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// statusFor maps a service error to the HTTP status and message sent to the
// client. Validation errors keep their text as details since it is written
// for the user.
func statusFor(err error) (int, errorResponse) {
	switch {
	case errors.Is(err, common.ErrorInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: msgLoginFailed}
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, errorResponse{Error: msgInvalidInput, Details: err.Error()}
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, errorResponse{Error: msgNotFound}
	case errors.Is(err, common.ErrorCategoryNotEmpty):
		return http.StatusConflict, errorResponse{Error: msgCategoryNotEmpty}
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict, errorResponse{Error: msgConflict}
	case errors.Is(err, common.ErrorUnsupportedMedia):
		return http.StatusUnsupportedMediaType, errorResponse{Error: msgUnsupportedMedia}
	case errors.Is(err, common.ErrorTooLarge):
		return http.StatusRequestEntityTooLarge, errorResponse{Error: msgTooLarge}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusRequestEntityTooLarge:
			return he.Code, errorResponse{Error: msgTooLarge}
		case http.StatusNotFound:
			return he.Code, errorResponse{Error: msgNotFound}
		case http.StatusBadRequest, http.StatusUnsupportedMediaType:
			return he.Code, errorResponse{Error: msgInvalidInput}
		case http.StatusMethodNotAllowed:
			return he.Code, errorResponse{Error: http.StatusText(he.Code)}
		}
	}

	return http.StatusInternalServerError, errorResponse{Error: msgInternal}
}

func (s *Server) handleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, body := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		s.logger.Error(c.Request().Context(), "write error response failed", "error", err)
	}
}
