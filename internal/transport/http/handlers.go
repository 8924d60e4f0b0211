package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Gunvolt24/cartsync/internal/domain"
	"github.com/Gunvolt24/cartsync/pkg/httpx"
)

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int64 `json:"quantity"`
}

type bulkUpdateRequest struct {
	Items []domain.ItemUpdate `json:"items"`
}

type cartResponse struct {
	UserID string           `json:"user_id"`
	Items  domain.CartItems `json:"items"`
}

type itemResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

func badBody(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body", "detail": err.Error()})
}

func (h *Handler) getCart(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	userID := c.GetHeader(HeaderUserID)
	items, err := h.carts.GetCart(ctx, userID)
	if err != nil {
		h.writeError(c, "GetCart", err)
		return
	}
	if items == nil {
		items = domain.CartItems{}
	}
	c.JSON(http.StatusOK, cartResponse{UserID: userID, Items: items})
}

func (h *Handler) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	qty, err := h.carts.AddItem(ctx, c.GetHeader(HeaderUserID), req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(c, "AddItem", err)
		return
	}
	c.JSON(http.StatusOK, itemResponse{ProductID: req.ProductID, Quantity: qty})
}

func (h *Handler) updateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	productID := c.Param("product_id")
	if err := h.carts.UpdateItem(ctx, c.GetHeader(HeaderUserID), productID, req.Quantity); err != nil {
		h.writeError(c, "UpdateItem", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// removeItem — то же, что UpdateItem с нулевым количеством.
func (h *Handler) removeItem(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.carts.UpdateItem(ctx, c.GetHeader(HeaderUserID), c.Param("product_id"), 0); err != nil {
		h.writeError(c, "RemoveItem", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) bulkUpdate(c *gin.Context) {
	var req bulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.carts.BulkUpdate(ctx, c.GetHeader(HeaderUserID), req.Items); err != nil {
		h.writeError(c, "BulkUpdate", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) clearCart(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.carts.ClearCart(ctx, c.GetHeader(HeaderUserID)); err != nil {
		h.writeError(c, "ClearCart", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) placeOrder(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	order, err := h.checkout.Checkout(ctx, c.GetHeader(HeaderUserID))
	if err != nil {
		h.writeError(c, "Checkout", err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) getOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	order, err := h.orders.GetOrder(ctx, id)
	if err != nil {
		h.writeError(c, "GetOrder", err)
		return
	}
	// Чужой заказ не отличаем от отсутствующего.
	if order == nil || order.UserID != c.GetHeader(HeaderUserID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// ordersPage — размер страницы истории заказов.
var ordersPage = httpx.PageBounds{Default: 20, Max: 100}

func (h *Handler) listOrders(c *gin.Context) {
	page := httpx.ParsePage(c, ordersPage)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	orders, err := h.orders.OrdersByUser(ctx, c.GetHeader(HeaderUserID), page.Limit, page.Offset)
	if err != nil {
		h.writeError(c, "OrdersByUser", err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	c.JSON(http.StatusOK, orders)
}
