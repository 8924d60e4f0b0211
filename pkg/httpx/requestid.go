package httpx

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Gunvolt24/cartsync/pkg/ctxmeta"
)

// HeaderRequestID — корреляционный идентификатор запроса (вход и ответ).
const HeaderRequestID = "X-Request-ID"

// maxRequestIDLen — длиннее клиентский id не принимаем, генерируем свой.
const maxRequestIDLen = 128

// RequestIDMiddleware — request_id из заголовка клиента или новый UUID;
// кладётся в контекст и возвращается в ответе.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		c.Header(HeaderRequestID, rid)
		c.Request = c.Request.WithContext(ctxmeta.WithRequestID(c.Request.Context(), rid))
		c.Next()
	}
}

// UserIDMiddleware — идентификатор пользователя из заголовка в контекст (для логов).
// Проверка значения остаётся за бизнес-слоем.
func UserIDMiddleware(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := strings.TrimSpace(c.GetHeader(header)); uid != "" {
			c.Request = c.Request.WithContext(ctxmeta.WithUserID(c.Request.Context(), uid))
		}
		c.Next()
	}
}

// validRequestID — непустой печатный ASCII разумной длины (значение попадает в логи и заголовки).
func validRequestID(s string) bool {
	if s == "" || len(s) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}
