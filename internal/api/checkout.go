package api

import (
	"fmt"
	"net/http"

	"pharmahub-service/internal/apperr"
	"pharmahub-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listCart(c *gin.Context) {
	email := callerEmail(c)
	if q := c.Query("email"); q != "" && q != email {
		respondError(c, "Forbidden access", fmt.Errorf("%w: cart belongs to another user", apperr.ErrForbidden))
		return
	}

	items, err := h.svc.Carts.List(c.Request.Context(), email)
	if err != nil {
		respondError(c, "Failed to list cart", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) addCartItem(c *gin.Context) {
	var req service.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.svc.Carts.Add(c.Request.Context(), callerEmail(c), &req)
	if err != nil {
		respondError(c, "Failed to add cart item", err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) updateCartItem(c *gin.Context) {
	var req service.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.svc.Carts.UpdateQuantity(c.Request.Context(), callerEmail(c), c.Param("id"), req.Quantity)
	if err != nil {
		respondError(c, "Failed to update cart item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) deleteCartItem(c *gin.Context) {
	if err := h.svc.Carts.Remove(c.Request.Context(), callerEmail(c), c.Param("id")); err != nil {
		respondError(c, "Failed to delete cart item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": 1})
}

func (h *Handler) clearCart(c *gin.Context) {
	n, err := h.svc.Carts.Clear(c.Request.Context(), callerEmail(c))
	if err != nil {
		respondError(c, "Failed to clear cart", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": n})
}

func (h *Handler) createPaymentIntent(c *gin.Context) {
	var req service.PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.svc.Payments.CreatePaymentIntent(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Failed to create payment intent", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// reconcilePayment records a checkout and clears the paid cart items
func (h *Handler) reconcilePayment(c *gin.Context) {
	var req service.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.svc.Payments.Reconcile(c.Request.Context(), callerEmail(c), &req)
	if err != nil {
		respondError(c, "Failed to record payment", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) paymentHistory(c *gin.Context) {
	payments, err := h.svc.Payments.History(c.Request.Context(), callerEmail(c))
	if err != nil {
		respondError(c, "Failed to list payments", err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *Handler) listPayments(c *gin.Context) {
	payments, err := h.svc.Payments.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to list payments", err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *Handler) sellerPayments(c *gin.Context) {
	payments, err := h.svc.Payments.SellerSales(c.Request.Context(), callerEmail(c))
	if err != nil {
		respondError(c, "Failed to list sales", err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *Handler) updatePaymentStatus(c *gin.Context) {
	var req service.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.svc.Payments.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		respondError(c, "Failed to update payment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true, "status": req.Status})
}

func (h *Handler) adminStats(c *gin.Context) {
	totals, err := h.svc.Dashboard.Aggregate(c.Request.Context(), "")
	if err != nil {
		respondError(c, "Failed to aggregate revenue", err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (h *Handler) sellerStats(c *gin.Context) {
	totals, err := h.svc.Dashboard.Aggregate(c.Request.Context(), callerEmail(c))
	if err != nil {
		respondError(c, "Failed to aggregate revenue", err)
		return
	}
	c.JSON(http.StatusOK, totals)
}
