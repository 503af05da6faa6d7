package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eventmarket-backend/internal/http/handlers/common"
	"github.com/ignatzorin/eventmarket-backend/internal/http/response"
	"github.com/ignatzorin/eventmarket-backend/internal/models"
	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eventmarket-backend/internal/repository"
	"github.com/ignatzorin/eventmarket-backend/internal/service"
)

// RequestHandler обслуживает маршруты заявок.
type RequestHandler struct {
	requests *service.RequestService
	pitches  *service.PitchService
}

// NewRequestHandler создаёт хэндлер заявок.
func NewRequestHandler(requests *service.RequestService, pitches *service.PitchService) *RequestHandler {
	return &RequestHandler{requests: requests, pitches: pitches}
}

type createRequestRequest struct {
	Title       string     `json:"title"`
	EventName   string     `json:"eventName"`
	EventDate   *time.Time `json:"eventDate"`
	Location    string     `json:"location"`
	ServiceType string     `json:"serviceType"`
	Description string     `json:"description"`
	Budget      float64    `json:"budget"`
	Publish     bool       `json:"publish"`
}

// Create обрабатывает POST /requests.
func (h *RequestHandler) Create(c *gin.Context) {
	caller, err := common.CurrentCaller(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req createRequestRequest
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	created, err := h.requests.Create(c.Request.Context(), caller, service.CreateRequestInput{
		Title:       req.Title,
		EventName:   req.EventName,
		EventDate:   req.EventDate,
		Location:    req.Location,
		ServiceType: req.ServiceType,
		Description: req.Description,
		Budget:      req.Budget,
		Publish:     req.Publish,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, created)
}

// List обрабатывает GET /requests?status&clientId&page&size&sort.
func (h *RequestHandler) List(c *gin.Context) {
	caller, err := common.CurrentCaller(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, err := common.ParsePage(c, repository.RequestSort)
	if err != nil {
		response.Error(c, err)
		return
	}

	var filter models.RequestFilter
	if filter.Status, err = parseRequestStatus(c.Query("status")); err != nil {
		response.Error(c, err)
		return
	}
	if raw := c.Query("clientId"); raw != "" {
		clientID, err := common.ParseUUIDField("clientId", raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.ClientID = &clientID
	}

	result, err := h.requests.List(c.Request.Context(), caller, filter, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListMine обрабатывает GET /requests/mine.
func (h *RequestHandler) ListMine(c *gin.Context) {
	caller, err := common.CurrentCaller(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, err := common.ParsePage(c, repository.RequestSort)
	if err != nil {
		response.Error(c, err)
		return
	}

	status, err := parseRequestStatus(c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.requests.ListMine(c.Request.Context(), caller, status, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Get обрабатывает GET /requests/:id.
func (h *RequestHandler) Get(c *gin.Context) {
	caller, id, ok := callerAndID(c)
	if !ok {
		return
	}

	req, err := h.requests.Get(c.Request.Context(), caller, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, req)
}

// Publish обрабатывает POST /requests/:id/publish.
func (h *RequestHandler) Publish(c *gin.Context) {
	h.transition(c, h.requests.Publish)
}

// Cancel обрабатывает POST /requests/:id/cancel.
func (h *RequestHandler) Cancel(c *gin.Context) {
	h.transition(c, h.requests.Cancel)
}

// Complete обрабатывает POST /requests/:id/complete.
func (h *RequestHandler) Complete(c *gin.Context) {
	h.transition(c, h.requests.Complete)
}

// Delete обрабатывает DELETE /requests/:id.
func (h *RequestHandler) Delete(c *gin.Context) {
	h.transition(c, h.requests.Delete)
}

// ListPitches обрабатывает GET /requests/:id/pitches.
func (h *RequestHandler) ListPitches(c *gin.Context) {
	caller, id, ok := callerAndID(c)
	if !ok {
		return
	}

	page, err := common.ParsePage(c, repository.PitchSort)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.pitches.ListForRequest(c.Request.Context(), caller, id, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

type requestTransition func(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.ServiceRequest, error)

func (h *RequestHandler) transition(c *gin.Context, fn requestTransition) {
	caller, id, ok := callerAndID(c)
	if !ok {
		return
	}

	updated, err := fn(c.Request.Context(), caller, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, updated)
}

// callerAndID пишет ошибку в ответ и возвращает ok=false, если разбор не удался.
func callerAndID(c *gin.Context) (models.Caller, uuid.UUID, bool) {
	caller, err := common.CurrentCaller(c)
	if err != nil {
		response.Error(c, err)
		return models.Caller{}, uuid.Nil, false
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return models.Caller{}, uuid.Nil, false
	}

	return caller, id, true
}

func parseRequestStatus(raw string) (*valueobject.RequestStatus, error) {
	if raw == "" {
		return nil, nil
	}
	status, err := valueobject.NewRequestStatus(strings.ToUpper(raw))
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный статус заявки: "+raw)
	}
	return &status, nil
}
