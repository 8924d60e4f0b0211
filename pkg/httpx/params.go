package httpx

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Page — окно выборки списка (история заказов).
type Page struct {
	Limit  int
	Offset int
}

// PageBounds — лимит по умолчанию и верхняя граница.
type PageBounds struct {
	Default int
	Max     int
}

// ParsePage — limit/offset из query. Нечисловой limit заменяется дефолтом,
// limit прижимается к [1..Max], отрицательный или нечисловой offset даёт 0.
func ParsePage(c *gin.Context, b PageBounds) Page {
	p := Page{Limit: clamp(b.Default, 1, b.Max)}
	if raw, ok := c.GetQuery("limit"); ok {
		if v, err := strconv.Atoi(raw); err == nil {
			p.Limit = clamp(v, 1, b.Max)
		}
	}
	if raw, ok := c.GetQuery("offset"); ok {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			p.Offset = v
		}
	}
	return p
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
