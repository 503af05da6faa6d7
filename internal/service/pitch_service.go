package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eventmarket-backend/internal/models"
	"github.com/ignatzorin/eventmarket-backend/internal/pagination"
	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eventmarket-backend/internal/validation"
)

// PitchRepository - хранилище питчей.
type PitchRepository interface {
	Create(ctx context.Context, pitch *models.Pitch) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Pitch, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID, page pagination.Params) ([]models.Pitch, int64, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID, page pagination.Params) ([]models.Pitch, int64, error)
	SelectWinner(ctx context.Context, requestID, pitchID uuid.UUID) (*models.PitchSelection, error)
}

// RequestReader читает заявки.
type RequestReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error)
}

// PitchService - отправка и выбор предложений исполнителей.
type PitchService struct {
	pitches  PitchRepository
	requests RequestReader
	notifier *Notifier
}

// NewPitchService создаёт сервис питчей.
func NewPitchService(pitches PitchRepository, requests RequestReader, notifier *Notifier) *PitchService {
	return &PitchService{pitches: pitches, requests: requests, notifier: notifier}
}

// SubmitPitchInput - предложение исполнителя.
type SubmitPitchInput struct {
	RequestID     uuid.UUID
	PitchDetails  string
	ProposedPrice float64
}

// Submit отправляет питч на открытую заявку. Один исполнитель - один питч на заявку.
func (s *PitchService) Submit(ctx context.Context, caller models.Caller, in SubmitPitchInput) (*models.Pitch, error) {
	if caller.Role != valueobject.RoleProvider {
		return nil, apperror.New(apperror.ErrCodeForbidden, "отправлять питчи могут только исполнители")
	}
	if err := invalidInput(
		validation.ValidatePrice("предложенная цена", in.ProposedPrice),
		validation.ValidatePitchDetails(in.PitchDetails),
	); err != nil {
		return nil, err
	}

	req, err := s.requests.GetByID(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if !req.VisibleTo(caller) {
		return nil, apperror.ErrRequestNotFound
	}
	if req.Status != valueobject.RequestStatusOpen {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition, "заявка не принимает питчи в статусе "+string(req.Status))
	}

	pitch := &models.Pitch{
		RequestID:     req.ID,
		ProviderID:    caller.ID,
		PitchDetails:  strings.TrimSpace(in.PitchDetails),
		ProposedPrice: in.ProposedPrice,
		Status:        valueobject.PitchStatusPending,
	}
	if err := s.pitches.Create(ctx, pitch); err != nil {
		return nil, err
	}

	s.notifier.Notify(Event{
		UserID:  req.ClientID,
		Type:    models.EventPitchReceived,
		Message: "Новый питч по заявке «" + req.Title + "»",
		Payload: map[string]interface{}{"requestId": req.ID, "pitchId": pitch.ID},
	})
	return pitch, nil
}

// Select выбирает питч победителем. Заявка переходит в ASSIGNED,
// остальные питчи в LOSE, всё в одной транзакции.
func (s *PitchService) Select(ctx context.Context, caller models.Caller, pitchID uuid.UUID) (*models.PitchSelection, error) {
	pitch, err := s.pitches.GetByID(ctx, pitchID)
	if err != nil {
		return nil, err
	}
	req, err := s.requests.GetByID(ctx, pitch.RequestID)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(req.ClientID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "выбрать питч может только владелец заявки")
	}
	if err := req.Status.CheckTransition(valueobject.RequestStatusAssigned); err != nil {
		return nil, err
	}
	if pitch.Status != valueobject.PitchStatusPending {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition, "питч уже рассмотрен")
	}

	selection, err := s.pitches.SelectWinner(ctx, req.ID, pitch.ID)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(selection.LosingPitches)+1)
	events = append(events, Event{
		UserID:  selection.WinningPitch.ProviderID,
		Type:    models.EventPitchWon,
		Message: "Ваш питч по заявке «" + req.Title + "» выбран",
		Payload: map[string]interface{}{"requestId": req.ID, "pitchId": selection.WinningPitch.ID},
	})
	for _, lost := range selection.LosingPitches {
		events = append(events, Event{
			UserID:  lost.ProviderID,
			Type:    models.EventPitchLost,
			Message: "По заявке «" + req.Title + "» выбран другой исполнитель",
			Payload: map[string]interface{}{"requestId": req.ID, "pitchId": lost.ID},
		})
	}
	s.notifier.Notify(events...)

	return selection, nil
}

// Mine возвращает питчи текущего исполнителя.
func (s *PitchService) Mine(ctx context.Context, caller models.Caller, page pagination.Params) (pagination.Page[models.Pitch], error) {
	if caller.Role != valueobject.RoleProvider {
		return pagination.Page[models.Pitch]{}, apperror.New(apperror.ErrCodeForbidden, "список доступен только исполнителям")
	}
	items, total, err := s.pitches.ListByProvider(ctx, caller.ID, page)
	if err != nil {
		return pagination.Page[models.Pitch]{}, err
	}
	return pagination.NewPage(items, page, total), nil
}

// ListForRequest возвращает питчи заявки её владельцу.
func (s *PitchService) ListForRequest(ctx context.Context, caller models.Caller, requestID uuid.UUID, page pagination.Params) (pagination.Page[models.Pitch], error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return pagination.Page[models.Pitch]{}, err
	}
	if !req.VisibleTo(caller) {
		return pagination.Page[models.Pitch]{}, apperror.ErrRequestNotFound
	}
	if !caller.Owns(req.ClientID) {
		return pagination.Page[models.Pitch]{}, apperror.New(apperror.ErrCodeForbidden,
			fmt.Sprintf("питчи заявки %s доступны только владельцу", req.ID))
	}
	items, total, err := s.pitches.ListByRequest(ctx, requestID, page)
	if err != nil {
		return pagination.Page[models.Pitch]{}, err
	}
	return pagination.NewPage(items, page, total), nil
}
