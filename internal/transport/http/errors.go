package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/cartsync/internal/domain"
)

// statusFor — HTTP-код для ошибки доменного слоя.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusUnprocessableEntity, "cart is empty"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store unavailable"
	case errors.Is(err, domain.ErrCheckoutFailed):
		return http.StatusInternalServerError, "checkout failed"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// writeError — логирует и отдаёт ошибку JSON-ом; для 400/404/422 в ответ попадает причина.
func (h *Handler) writeError(c *gin.Context, op string, err error) {
	status, msg := statusFor(err)
	resp := gin.H{"error": msg}

	switch status {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
		resp["detail"] = err.Error()
		h.log.Warnf(c.Request.Context(), "%s rejected status=%d err=%v", op, status, err)
	default:
		h.log.Errorf(c.Request.Context(), "%s failed status=%d err=%v", op, status, err)
	}

	c.AbortWithStatusJSON(status, resp)
}
