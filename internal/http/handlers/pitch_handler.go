package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/eventmarket-backend/internal/http/handlers/common"
	"github.com/ignatzorin/eventmarket-backend/internal/http/response"
	"github.com/ignatzorin/eventmarket-backend/internal/repository"
	"github.com/ignatzorin/eventmarket-backend/internal/service"
)

// PitchHandler обслуживает маршруты питчей.
type PitchHandler struct {
	pitches *service.PitchService
}

// NewPitchHandler создаёт хэндлер питчей.
func NewPitchHandler(pitches *service.PitchService) *PitchHandler {
	return &PitchHandler{pitches: pitches}
}

// Submit обрабатывает POST /pitches.
func (h *PitchHandler) Submit(c *gin.Context) {
	caller, err := common.CurrentCaller(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req struct {
		RequestID     string  `json:"requestId" binding:"required"`
		PitchDetails  string  `json:"pitchDetails"`
		ProposedPrice float64 `json:"proposedPrice"`
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

	pitch, err := h.pitches.Submit(c.Request.Context(), caller, service.SubmitPitchInput{
		RequestID:     requestID,
		PitchDetails:  req.PitchDetails,
		ProposedPrice: req.ProposedPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, pitch)
}

// Mine обрабатывает GET /pitches/mine.
func (h *PitchHandler) Mine(c *gin.Context) {
	caller, err := common.CurrentCaller(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, err := common.ParsePage(c, repository.PitchSort)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.pitches.Mine(c.Request.Context(), caller, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Select обрабатывает POST /pitches/:id/select.
func (h *PitchHandler) Select(c *gin.Context) {
	caller, id, ok := callerAndID(c)
	if !ok {
		return
	}

	selection, err := h.pitches.Select(c.Request.Context(), caller, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, selection)
}
