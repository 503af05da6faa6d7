package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/eventmarket-backend/internal/http/handlers/common"
	"github.com/ignatzorin/eventmarket-backend/internal/http/response"
	"github.com/ignatzorin/eventmarket-backend/internal/repository"
	"github.com/ignatzorin/eventmarket-backend/internal/service"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Create POST /payments
func (h *PaymentHandler) Create(c *gin.Context) {
	caller, err := common.CurrentCaller(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req struct {
		RequestID     string  `json:"requestId" binding:"required"`
		Amount        float64 `json:"amount"`
		PaymentMethod string  `json:"paymentMethod"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	requestID, err := common.ParseUUIDField("requestId", req.RequestID)
	if err != nil {
		response.Error(c, err)
		return
	}

	payment, err := h.payments.Create(c.Request.Context(), caller, service.CreatePaymentInput{
		RequestID:     requestID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, payment)
}

// GetStatus GET /payments/request/:id/status
func (h *PaymentHandler) GetStatus(c *gin.Context) {
	caller, requestID, ok := callerAndID(c)
	if !ok {
		return
	}

	payment, err := h.payments.GetStatus(c.Request.Context(), caller, requestID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, payment)
}

// UpdateStatus PUT /payments/:id/status
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	caller, paymentID, ok := callerAndID(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	payment, err := h.payments.UpdateStatus(c.Request.Context(), caller, paymentID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, payment)
}

// Mine GET /payments/mine
func (h *PaymentHandler) Mine(c *gin.Context) {
	caller, err := common.CurrentCaller(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, err := common.ParsePage(c, repository.PaymentSort)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.payments.ProviderHistory(c.Request.Context(), caller, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
