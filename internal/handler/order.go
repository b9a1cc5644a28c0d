package handler

import (
	"net/http"

	"github.com/as0628/expense-tracker-project/internal/service"
	"github.com/as0628/expense-tracker-project/internal/util"

	"github.com/gin-gonic/gin"
)

// OrderHandler 负责会员购买：下单、校验支付、查询订单
type OrderHandler struct {
	Payments *service.PaymentService
}

func NewOrderHandler(payments *service.PaymentService) *OrderHandler {
	return &OrderHandler{Payments: payments}
}

func (h *OrderHandler) Create(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	checkout, err := h.Payments.CreatePendingOrder(c.Request.Context(), account)
	if err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"message":            "Order created successfully",
		"order_id":           checkout.OrderID,
		"payment_session_id": checkout.PaymentSessionID,
		"amount":             checkout.Amount,
	})
}

type verifyReq struct {
	OrderID string `json:"orderId" binding:"required"`
}

func (h *OrderHandler) Verify(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	var req verifyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "orderId is required")
		return
	}

	result, err := h.Payments.ConfirmOrder(c.Request.Context(), account.ID, req.OrderID)
	if err != nil {
		util.Fail(c, err)
		return
	}

	msg := "Payment failed or pending"
	if result.Success {
		msg = "Payment successful, premium activated"
	}
	util.Success(c, util.Response{
		"success":  result.Success,
		"status":   result.Status,
		"order_id": result.OrderID,
		"message":  msg,
	})
}

func (h *OrderHandler) Status(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	order, err := h.Payments.OrderStatus(c.Request.Context(), account.ID, c.Param("orderId"))
	if err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"order_id":   order.OrderID,
		"status":     order.Status,
		"amount":     service.FormatCents(order.AmountCents),
		"created_at": order.CreatedAt,
		"updated_at": order.UpdatedAt,
	})
}
