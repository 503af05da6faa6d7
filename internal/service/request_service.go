package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eventmarket-backend/internal/logger"
	"github.com/ignatzorin/eventmarket-backend/internal/models"
	"github.com/ignatzorin/eventmarket-backend/internal/pagination"
	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eventmarket-backend/internal/validation"
)

// ServiceRequestRepository - хранилище заявок.
type ServiceRequestRepository interface {
	Create(ctx context.Context, req *models.ServiceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error)
	List(ctx context.Context, filter models.RequestFilter, page pagination.Params) ([]models.ServiceRequest, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to valueobject.RequestStatus) (*models.ServiceRequest, error)
}

// PendingProviderLister возвращает исполнителей с нерешёнными питчами.
type PendingProviderLister interface {
	ListPendingProviders(ctx context.Context, requestID uuid.UUID) ([]uuid.UUID, error)
}

// LatestPaymentFinder возвращает последний платёж по заявке.
type LatestPaymentFinder interface {
	LatestByRequest(ctx context.Context, requestID uuid.UUID) (*models.Payment, error)
}

// RequestService управляет жизненным циклом заявки.
type RequestService struct {
	requests ServiceRequestRepository
	pitches  PendingProviderLister
	payments LatestPaymentFinder
	notifier *Notifier
}

// NewRequestService создаёт сервис заявок.
func NewRequestService(requests ServiceRequestRepository, pitches PendingProviderLister, payments LatestPaymentFinder, notifier *Notifier) *RequestService {
	return &RequestService{
		requests: requests,
		pitches:  pitches,
		payments: payments,
		notifier: notifier,
	}
}

// CreateRequestInput - данные новой заявки.
type CreateRequestInput struct {
	Title       string
	EventName   string
	EventDate   *time.Time
	Location    string
	ServiceType string
	Description string
	Budget      float64
	Publish     bool
}

// Create создаёт заявку в DRAFT или сразу в OPEN.
func (s *RequestService) Create(ctx context.Context, caller models.Caller, in CreateRequestInput) (*models.ServiceRequest, error) {
	if caller.Role != valueobject.RoleClient && !caller.IsAdmin() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "создавать заявки могут только клиенты")
	}

	if err := invalidInput(
		validation.ValidateRequestTitle(in.Title),
		validation.ValidateRequestFields(in.EventName, in.Location, in.ServiceType, in.Description),
		validation.ValidateBudget(in.Budget),
	); err != nil {
		return nil, err
	}

	status := valueobject.RequestStatusDraft
	if in.Publish {
		status = valueobject.RequestStatusOpen
	}

	req := &models.ServiceRequest{
		ClientID:    caller.ID,
		Title:       strings.TrimSpace(in.Title),
		EventName:   strings.TrimSpace(in.EventName),
		EventDate:   in.EventDate,
		Location:    strings.TrimSpace(in.Location),
		ServiceType: strings.TrimSpace(in.ServiceType),
		Description: strings.TrimSpace(in.Description),
		Budget:      in.Budget,
		Status:      status,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Get возвращает заявку. Чужие черновики и удалённые заявки не существуют для вызывающего.
func (s *RequestService) Get(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.ServiceRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.VisibleTo(caller) {
		return nil, apperror.ErrRequestNotFound
	}
	return req, nil
}

// List возвращает публичный список заявок. Скрытые статусы доступны
// только в выборке по собственным заявкам или администратору.
func (s *RequestService) List(ctx context.Context, caller models.Caller, filter models.RequestFilter, page pagination.Params) (pagination.Page[models.ServiceRequest], error) {
	filter.IncludeHidden = filter.ClientID != nil && caller.Owns(*filter.ClientID)
	return s.list(ctx, filter, page)
}

// ListMine возвращает все заявки вызывающего, включая черновики.
func (s *RequestService) ListMine(ctx context.Context, caller models.Caller, status *valueobject.RequestStatus, page pagination.Params) (pagination.Page[models.ServiceRequest], error) {
	return s.list(ctx, models.RequestFilter{Status: status, ClientID: &caller.ID, IncludeHidden: true}, page)
}

func (s *RequestService) list(ctx context.Context, filter models.RequestFilter, page pagination.Params) (pagination.Page[models.ServiceRequest], error) {
	items, total, err := s.requests.List(ctx, filter, page)
	if err != nil {
		return pagination.Page[models.ServiceRequest]{}, err
	}
	return pagination.NewPage(items, page, total), nil
}

// Publish переводит черновик в OPEN.
func (s *RequestService) Publish(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.ServiceRequest, error) {
	req, err := s.loadOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, req, valueobject.RequestStatusOpen)
}

// Cancel отменяет открытую или назначенную заявку и уведомляет исполнителей.
func (s *RequestService) Cancel(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.ServiceRequest, error) {
	req, err := s.loadOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := req.Status.CheckTransition(valueobject.RequestStatusCancelled); err != nil {
		return nil, err
	}

	recipients := s.affectedProviders(ctx, req)
	updated, err := s.transition(ctx, req, valueobject.RequestStatusCancelled)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(providerEvents(recipients, models.EventRequestCancelled,
		"Заявка «"+updated.Title+"» отменена клиентом", updated.ID)...)
	return updated, nil
}

// Complete завершает назначенную заявку после успешной оплаты.
func (s *RequestService) Complete(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.ServiceRequest, error) {
	req, err := s.loadOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := req.Status.CheckTransition(valueobject.RequestStatusCompleted); err != nil {
		return nil, err
	}

	payment, err := s.payments.LatestByRequest(ctx, req.ID)
	if err != nil && !errors.Is(err, apperror.ErrPaymentNotFound) {
		return nil, err
	}
	if payment == nil || payment.Status != valueobject.PaymentStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition, "заявку можно завершить только после успешной оплаты")
	}

	updated, err := s.transition(ctx, req, valueobject.RequestStatusCompleted)
	if err != nil {
		return nil, err
	}

	if updated.AssignedProviderID != nil {
		s.notifier.Notify(providerEvents([]uuid.UUID{*updated.AssignedProviderID}, models.EventRequestCompleted,
			"Заявка «"+updated.Title+"» завершена", updated.ID)...)
	}
	return updated, nil
}

// Delete мягко удаляет заявку.
func (s *RequestService) Delete(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.ServiceRequest, error) {
	req, err := s.loadOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := req.Status.CheckTransition(valueobject.RequestStatusDeleted); err != nil {
		return nil, err
	}

	recipients := s.affectedProviders(ctx, req)
	updated, err := s.transition(ctx, req, valueobject.RequestStatusDeleted)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(providerEvents(recipients, models.EventRequestDeleted,
		"Заявка «"+updated.Title+"» удалена", updated.ID)...)
	return updated, nil
}

// loadOwned загружает заявку и проверяет права владельца или администратора.
func (s *RequestService) loadOwned(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.ServiceRequest, error) {
	req, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(req.ClientID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "изменять заявку может только её владелец")
	}
	return req, nil
}

func (s *RequestService) transition(ctx context.Context, req *models.ServiceRequest, to valueobject.RequestStatus) (*models.ServiceRequest, error) {
	if err := req.Status.CheckTransition(to); err != nil {
		return nil, err
	}
	return s.requests.UpdateStatus(ctx, req.ID, req.Status, to)
}

// affectedProviders - исполнители с нерешёнными питчами и назначенный исполнитель.
func (s *RequestService) affectedProviders(ctx context.Context, req *models.ServiceRequest) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var out []uuid.UUID
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}

	ids, err := s.pitches.ListPendingProviders(ctx, req.ID)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"request_id": req.ID,
			"error":      err.Error(),
		}).Warn("request service: не удалось получить исполнителей для уведомления")
	}
	for _, id := range ids {
		add(id)
	}
	if req.AssignedProviderID != nil {
		add(*req.AssignedProviderID)
	}
	return out
}

func providerEvents(userIDs []uuid.UUID, eventType, message string, requestID uuid.UUID) []Event {
	events := make([]Event, 0, len(userIDs))
	for _, id := range userIDs {
		events = append(events, Event{
			UserID:  id,
			Type:    eventType,
			Message: message,
			Payload: map[string]interface{}{"requestId": requestID},
		})
	}
	return events
}
