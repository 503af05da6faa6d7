package client

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eventmarket-backend/internal/models"
	"github.com/ignatzorin/eventmarket-backend/internal/validation"
)

type CreateRequestInput struct {
	Title       string     `json:"title"`
	EventName   string     `json:"eventName"`
	EventDate   *time.Time `json:"eventDate,omitempty"`
	Location    string     `json:"location"`
	ServiceType string     `json:"serviceType"`
	Description string     `json:"description"`
	Budget      float64    `json:"budget"`

	// Publish создаёт заявку сразу в статусе OPEN.
	Publish bool `json:"publish"`
}

// RequestFilter - фильтр публичного списка заявок.
type RequestFilter struct {
	Status   valueobject.RequestStatus
	ClientID *uuid.UUID
}

func (in CreateRequestInput) validate() error {
	if err := validation.ValidateRequestTitle(in.Title); err != nil {
		return localError(err)
	}
	if err := validation.ValidateRequestFields(in.EventName, in.Location, in.ServiceType, in.Description); err != nil {
		return localError(err)
	}
	if err := validation.ValidateBudget(in.Budget); err != nil {
		return localError(err)
	}
	return nil
}

// CreateRequest создаёт заявку (DRAFT или OPEN).
func (c *Client) CreateRequest(ctx context.Context, in CreateRequestInput) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	if err := c.do(ctx, call{method: http.MethodPost, path: "/requests", body: in, out: &req, mutating: true, check: in.validate}); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) GetRequest(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	if err := c.do(ctx, call{method: http.MethodGet, path: "/requests/" + id.String(), out: &req}); err != nil {
		return nil, err
	}
	return &req, nil
}

// ListRequests возвращает публичный список заявок.
func (c *Client) ListRequests(ctx context.Context, filter RequestFilter, page PageQuery) (*Page[models.ServiceRequest], error) {
	if err := page.validate(); err != nil {
		return nil, err
	}
	query := page.values()
	if filter.Status != "" {
		if !filter.Status.IsValid() {
			return nil, &Error{Kind: KindInvalidInput, Code: "VALIDATION_ERROR", Message: "некорректный статус заявки"}
		}
		query.Set("status", string(filter.Status))
	}
	if filter.ClientID != nil {
		query.Set("clientId", filter.ClientID.String())
	}

	var result Page[models.ServiceRequest]
	if err := c.do(ctx, call{method: http.MethodGet, path: "/requests", query: query, out: &result}); err != nil {
		return nil, err
	}
	return &result, nil
}

// MyRequests возвращает заявки текущего пользователя, включая черновики.
func (c *Client) MyRequests(ctx context.Context, page PageQuery) (*Page[models.ServiceRequest], error) {
	if err := page.validate(); err != nil {
		return nil, err
	}
	var result Page[models.ServiceRequest]
	if err := c.do(ctx, call{method: http.MethodGet, path: "/requests/mine", query: page.values(), out: &result}); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) PublishRequest(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	return c.transitionRequest(ctx, http.MethodPost, "/requests/"+id.String()+"/publish")
}

func (c *Client) CancelRequest(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	return c.transitionRequest(ctx, http.MethodPost, "/requests/"+id.String()+"/cancel")
}

// CompleteRequest завершает заявку. Сервер требует завершённый платёж.
func (c *Client) CompleteRequest(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	return c.transitionRequest(ctx, http.MethodPost, "/requests/"+id.String()+"/complete")
}

func (c *Client) DeleteRequest(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	return c.transitionRequest(ctx, http.MethodDelete, "/requests/"+id.String())
}

func (c *Client) transitionRequest(ctx context.Context, method, path string) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	if err := c.do(ctx, call{method: method, path: path, out: &req, mutating: true}); err != nil {
		return nil, err
	}
	return &req, nil
}
