package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/eventmarket-backend/internal/config"
	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eventmarket-backend/internal/logger"
	"github.com/ignatzorin/eventmarket-backend/internal/models"
	"github.com/ignatzorin/eventmarket-backend/internal/pagination"
	"github.com/ignatzorin/eventmarket-backend/internal/payments"
	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eventmarket-backend/internal/validation"
)

// PaymentRepository описывает хранилище платежей.
type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	LatestByRequest(ctx context.Context, requestID uuid.UUID) (*models.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to valueobject.PaymentStatus) (*models.Payment, error)
	SetGatewayRef(ctx context.Context, id uuid.UUID, ref string) error
	ListByProvider(ctx context.Context, providerID uuid.UUID, page pagination.Params) ([]models.Payment, int64, error)
}

// WinningPitchFinder находит питч назначенного исполнителя.
type WinningPitchFinder interface {
	GetByRequestAndProvider(ctx context.Context, requestID, providerID uuid.UUID) (*models.Pitch, error)
}

// PaymentPolicy - правила приёма платежей.
type PaymentPolicy struct {
	// Amount: pitch - сумма равна цене выбранного питча, budget - не больше бюджета, any - любая.
	Amount string
	// Retry: append - после FAILED можно создать новый платёж, disabled - нельзя.
	Retry    string
	Currency string
}

// PaymentPolicyFromConfig собирает политику из конфигурации.
func PaymentPolicyFromConfig(cfg *config.Config) PaymentPolicy {
	return PaymentPolicy{
		Amount:   cfg.PaymentAmountPolicy,
		Retry:    cfg.PaymentRetryPolicy,
		Currency: cfg.PaymentCurrency,
	}
}

// PaymentService проводит оплату назначенных заявок.
type PaymentService struct {
	payments PaymentRepository
	requests RequestReader
	pitches  WinningPitchFinder
	users    UserFinder
	gateway  payments.Gateway
	notifier *Notifier
	policy   PaymentPolicy
}

// NewPaymentService создаёт платёжный сервис.
func NewPaymentService(repo PaymentRepository, requests RequestReader, pitches WinningPitchFinder, users UserFinder, gateway payments.Gateway, notifier *Notifier, policy PaymentPolicy) *PaymentService {
	if policy.Amount == "" {
		policy.Amount = config.PaymentAmountPitch
	}
	if policy.Retry == "" {
		policy.Retry = config.PaymentRetryAppend
	}
	return &PaymentService{
		payments: repo,
		requests: requests,
		pitches:  pitches,
		users:    users,
		gateway:  gateway,
		notifier: notifier,
		policy:   policy,
	}
}

// CreatePaymentInput - запрос на оплату.
type CreatePaymentInput struct {
	RequestID     uuid.UUID
	Amount        float64
	PaymentMethod string
}

// Create создаёт платёж по назначенной заявке и передаёт его в платёжный шлюз.
// Ошибка шлюза переводит запись в FAILED и возвращает PAYMENT_GATEWAY_ERROR.
func (s *PaymentService) Create(ctx context.Context, caller models.Caller, in CreatePaymentInput) (*models.Payment, error) {
	method := strings.TrimSpace(in.PaymentMethod)
	if err := invalidInput(
		validation.ValidatePrice("сумма платежа", in.Amount),
		validation.ValidatePaymentMethod(method),
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
	if !caller.Owns(req.ClientID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "оплатить заявку может только её владелец")
	}
	if req.Status != valueobject.RequestStatusAssigned || req.AssignedProviderID == nil {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition, "оплата возможна только для назначенной заявки")
	}

	if err := s.checkExisting(ctx, req.ID); err != nil {
		return nil, err
	}
	if err := s.checkAmount(ctx, req, in.Amount); err != nil {
		return nil, err
	}

	money, err := valueobject.NewMoney(in.Amount, s.policy.Currency)
	if err != nil {
		return nil, err
	}
	payer, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	p := &models.Payment{
		RequestID:     req.ID,
		PayerID:       caller.ID,
		ProviderID:    *req.AssignedProviderID,
		Amount:        money.Amount,
		Currency:      money.Currency,
		PaymentMethod: method,
		Status:        valueobject.PaymentStatusPending,
		Gateway:       s.gateway.Name(),
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}

	log := logger.WithFields(logrus.Fields{
		"payment_id": p.ID,
		"request_id": req.ID,
		"gateway":    p.Gateway,
	})

	res, err := s.gateway.Charge(ctx, payments.ChargeRequest{
		PaymentID:   p.ID,
		RequestID:   req.ID,
		Amount:      money,
		Method:      method,
		PayerEmail:  payer.Email,
		Description: req.Title,
	})
	if err != nil {
		log.WithError(err).Warn("payment service: шлюз отклонил платёж")
		if _, failErr := s.payments.UpdateStatus(ctx, p.ID, valueobject.PaymentStatusPending, valueobject.PaymentStatusFailed); failErr != nil {
			log.WithError(failErr).Error("payment service: не удалось пометить платёж как FAILED")
		} else {
			p.Status = valueobject.PaymentStatusFailed
		}
		s.notifier.Notify(Event{
			UserID:  p.PayerID,
			Type:    models.EventPaymentFailed,
			Message: "Платёж по заявке «" + req.Title + "» не прошёл",
			Payload: map[string]interface{}{"requestId": req.ID, "paymentId": p.ID},
		})
		return nil, apperror.Wrap(err, apperror.ErrCodePaymentGatewayError, "платёжный шлюз отклонил операцию").
			WithDetail("paymentId", p.ID.String())
	}

	if res.Reference != "" {
		if err := s.payments.SetGatewayRef(ctx, p.ID, res.Reference); err != nil {
			log.WithError(err).Error("payment service: не удалось сохранить ссылку шлюза")
		} else {
			ref := res.Reference
			p.GatewayRef = &ref
		}
	}

	s.notifier.Notify(Event{
		UserID:  p.ProviderID,
		Type:    models.EventPaymentCreated,
		Message: "Клиент оплатил заявку «" + req.Title + "»: " + money.String(),
		Payload: map[string]interface{}{"requestId": req.ID, "paymentId": p.ID},
	})
	return p, nil
}

func (s *PaymentService) checkExisting(ctx context.Context, requestID uuid.UUID) error {
	latest, err := s.payments.LatestByRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, apperror.ErrPaymentNotFound) {
			return nil
		}
		return err
	}
	if latest.Status != valueobject.PaymentStatusFailed {
		return apperror.ErrPaymentExists
	}
	if s.policy.Retry == config.PaymentRetryDisabled {
		return apperror.New(apperror.ErrCodeConflict, "повторная оплата после неуспешной попытки отключена")
	}
	return nil
}

func (s *PaymentService) checkAmount(ctx context.Context, req *models.ServiceRequest, amount float64) error {
	switch s.policy.Amount {
	case config.PaymentAmountAny:
		return nil
	case config.PaymentAmountBudget:
		if amount > req.Budget {
			return apperror.New(apperror.ErrCodeValidation,
				fmt.Sprintf("сумма платежа превышает бюджет заявки %.2f", req.Budget))
		}
		return nil
	default:
		pitch, err := s.pitches.GetByRequestAndProvider(ctx, req.ID, *req.AssignedProviderID)
		if err != nil {
			return err
		}
		money := valueobject.Money{Amount: pitch.ProposedPrice}
		if !money.Equal(amount) {
			return apperror.New(apperror.ErrCodeValidation,
				fmt.Sprintf("сумма платежа должна совпадать с ценой выбранного питча %.2f", pitch.ProposedPrice))
		}
		return nil
	}
}

// GetStatus возвращает последний платёж по заявке.
func (s *PaymentService) GetStatus(ctx context.Context, caller models.Caller, requestID uuid.UUID) (*models.Payment, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.VisibleTo(caller) {
		return nil, apperror.ErrRequestNotFound
	}
	isProvider := req.AssignedProviderID != nil && *req.AssignedProviderID == caller.ID
	if !caller.Owns(req.ClientID) && !isProvider {
		return nil, apperror.New(apperror.ErrCodeForbidden, "платёж доступен только участникам заявки")
	}
	return s.payments.LatestByRequest(ctx, requestID)
}

// UpdateStatus подтверждает или отклоняет ожидающий платёж.
func (s *PaymentService) UpdateStatus(ctx context.Context, caller models.Caller, paymentID uuid.UUID, status string) (*models.Payment, error) {
	to, err := valueobject.NewPaymentStatus(strings.ToUpper(strings.TrimSpace(status)))
	if err != nil {
		return nil, err
	}

	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	req, err := s.requests.GetByID(ctx, p.RequestID)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(req.ClientID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "изменить статус платежа может только владелец заявки")
	}
	if req.Status != valueobject.RequestStatusAssigned {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition,
			"платёж по заявке в статусе "+string(req.Status)+" изменить нельзя")
	}
	if !p.Status.CanTransitionTo(to) {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition,
			"переход платежа из "+string(p.Status)+" в "+string(to)+" невозможен")
	}

	updated, err := s.payments.UpdateStatus(ctx, p.ID, p.Status, to)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{"requestId": req.ID, "paymentId": updated.ID}
	switch to {
	case valueobject.PaymentStatusCompleted:
		s.notifier.Notify(
			Event{UserID: updated.PayerID, Type: models.EventPaymentCompleted,
				Message: "Оплата заявки «" + req.Title + "» подтверждена", Payload: payload},
			Event{UserID: updated.ProviderID, Type: models.EventPaymentCompleted,
				Message: "Оплата по заявке «" + req.Title + "» поступила", Payload: payload},
		)
	case valueobject.PaymentStatusFailed:
		s.notifier.Notify(Event{UserID: updated.PayerID, Type: models.EventPaymentFailed,
			Message: "Платёж по заявке «" + req.Title + "» не прошёл", Payload: payload})
	}
	return updated, nil
}

// ProviderHistory возвращает платежи в пользу текущего исполнителя.
func (s *PaymentService) ProviderHistory(ctx context.Context, caller models.Caller, page pagination.Params) (pagination.Page[models.Payment], error) {
	if caller.Role != valueobject.RoleProvider {
		return pagination.Page[models.Payment]{}, apperror.New(apperror.ErrCodeForbidden, "история платежей доступна только исполнителям")
	}
	items, total, err := s.payments.ListByProvider(ctx, caller.ID, page)
	if err != nil {
		return pagination.Page[models.Payment]{}, err
	}
	return pagination.NewPage(items, page, total), nil
}
