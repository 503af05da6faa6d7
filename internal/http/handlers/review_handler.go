package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/eventmarket-backend/internal/http/handlers/common"
	"github.com/ignatzorin/eventmarket-backend/internal/http/response"
	"github.com/ignatzorin/eventmarket-backend/internal/repository"
	"github.com/ignatzorin/eventmarket-backend/internal/service"
)

type ReviewHandler struct {
	reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Create POST /reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	caller, err := common.CurrentCaller(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req struct {
		RequestID string  `json:"requestId" binding:"required"`
		Rating    int     `json:"rating"`
		Comment   *string `json:"comment"`
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

	review, err := h.reviews.Create(c.Request.Context(), caller, service.CreateReviewInput{
		RequestID: requestID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, review)
}

// ListByProvider GET /reviews/provider/:id
func (h *ReviewHandler) ListByProvider(c *gin.Context) {
	providerID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	page, err := common.ParsePage(c, repository.ReviewSort)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.reviews.ProviderReviews(c.Request.Context(), providerID, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
