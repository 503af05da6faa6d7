package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/config"
	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eventmarket-backend/internal/http/handlers"
	"github.com/ignatzorin/eventmarket-backend/internal/http/router"
	"github.com/ignatzorin/eventmarket-backend/internal/models"
	"github.com/ignatzorin/eventmarket-backend/internal/pagination"
	"github.com/ignatzorin/eventmarket-backend/internal/payments"
	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eventmarket-backend/internal/service"
	"github.com/ignatzorin/eventmarket-backend/internal/session"
)

const supportContact = "support@example.com"

// testServer - настоящий роутер и сервисы поверх хранилища в памяти.
type testServer struct {
	t     *testing.T
	srv   *httptest.Server
	auth    *service.AuthService
	store   *memStore
	gateway *payments.MockGateway
	hits    atomic.Int64

	mu        sync.Mutex
	loginGate chan struct{}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		Env:             "test",
		RateLimitLimit:  1000,
		RateLimitPeriod: time.Minute,
		SupportContact:  supportContact,
	}

	store := newMemStore()
	users := memUsers{store}
	requests := memRequests{store}
	pitches := memPitches{store}
	paymentRepo := memPayments{store}
	notes := memNotifications{store}
	gateway := payments.NewMockGateway()

	notifier := service.NewNotifier(notes, nil, time.Second)
	auth := service.NewAuthService(users, service.NewTokenManager("test-secret", time.Hour),
		session.NewMemoryRevoker(), service.NewCacheService(ctx), time.Minute)
	requestService := service.NewRequestService(requests, pitches, paymentRepo, notifier)
	pitchService := service.NewPitchService(pitches, requests, notifier)
	paymentService := service.NewPaymentService(paymentRepo, requests, pitches, users, gateway,
		notifier, service.PaymentPolicyFromConfig(cfg))
	reviewService := service.NewReviewService(memReviews{store}, requests, users, notifier,
		valueobject.RatingRange{Min: 1, Max: 5})

	engine := router.SetupRouter(cfg, auth, router.Handlers{
		Auth:          handlers.NewAuthHandler(auth),
		Requests:      handlers.NewRequestHandler(requestService, pitchService),
		Pitches:       handlers.NewPitchHandler(pitchService),
		Payments:      handlers.NewPaymentHandler(paymentService),
		Reviews:       handlers.NewReviewHandler(reviewService),
		Notifications: handlers.NewNotificationHandler(service.NewNotificationService(notes)),
		WS:            handlers.NewWSHandler(nil, auth, nil),
		Health:        handlers.NewHealthHandler(nil, nil),
	})

	s := &testServer{t: t, auth: auth, store: store, gateway: gateway}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		if r.URL.Path == "/api/users/login" {
			s.mu.Lock()
			gate := s.loginGate
			s.mu.Unlock()
			if gate != nil {
				<-gate
			}
		}
		engine.ServeHTTP(w, r)
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *testServer) newClient(opts ...Option) *Client {
	s.t.Helper()
	c, err := New(s.srv.URL, append([]Option{WithSupportContact(supportContact)}, opts...)...)
	if err != nil {
		s.t.Fatalf("client: %v", err)
	}
	return c
}

// holdLogins задерживает ответы на вход до закрытия канала.
func (s *testServer) holdLogins() chan struct{} {
	gate := make(chan struct{})
	s.mu.Lock()
	s.loginGate = gate
	s.mu.Unlock()
	return gate
}

// suspend блокирует аккаунт от имени администратора.
func (s *testServer) suspend(email, reason string) {
	s.t.Helper()
	user, err := memUsers{s.store}.GetByEmail(context.Background(), email)
	if err != nil {
		s.t.Fatalf("suspend: %v", err)
	}
	admin := models.Caller{ID: uuid.New(), Role: valueobject.RoleAdmin, AccountStatus: valueobject.AccountStatusActive}
	_, err = s.auth.UpdateAccountStatus(context.Background(), admin, user.ID, service.UpdateAccountStatusInput{
		Status: string(valueobject.AccountStatusSuspended),
		Reason: &reason,
	})
	if err != nil {
		s.t.Fatalf("suspend: %v", err)
	}
}

// memStore повторяет ограничения схемы: уникальные индексы и CAS по статусу.
type memStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*models.User
	requests      map[uuid.UUID]*models.ServiceRequest
	pitches       []*models.Pitch
	payments      []*models.Payment
	reviews       []*models.Review
	notifications []*models.Notification
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]*models.User),
		requests: make(map[uuid.UUID]*models.ServiceRequest),
	}
}

func pageOf[T any](items []T, page pagination.Params) ([]T, int64) {
	total := int64(len(items))
	from := page.Offset()
	if from >= len(items) {
		return []T{}, total
	}
	to := from + page.Size
	if to > len(items) || to < from {
		to = len(items)
	}
	return items[from:to], total
}

type memUsers struct{ *memStore }

func (m memUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperror.ErrEmailTaken
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.ErrUserNotFound
}

func (m memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (m memUsers) UpdateLastLoginAt(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

func (m memUsers) UpdateAccountStatus(_ context.Context, userID uuid.UUID, status valueobject.AccountStatus, reason *string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	u.AccountStatus = status
	u.SuspensionReason = reason
	out := *u
	return &out, nil
}

type memRequests struct{ *memStore }

// snapshot копирует заявку с вычисленным pitchCount. Вызывается под m.mu.
func (m memRequests) snapshot(req *models.ServiceRequest) *models.ServiceRequest {
	out := *req
	out.PitchCount = 0
	for _, p := range m.pitches {
		if p.RequestID == req.ID {
			out.PitchCount++
		}
	}
	return &out
}

func (m memRequests) Create(_ context.Context, req *models.ServiceRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req.ID = uuid.New()
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	stored := *req
	m.requests[req.ID] = &stored
	return nil
}

func (m memRequests) GetByID(_ context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, apperror.ErrRequestNotFound
	}
	return m.snapshot(req), nil
}

func (m memRequests) List(_ context.Context, filter models.RequestFilter, page pagination.Params) ([]models.ServiceRequest, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []models.ServiceRequest
	for _, req := range m.requests {
		if !filter.IncludeHidden && !req.Status.IsPubliclyVisible() {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		if filter.ClientID != nil && req.ClientID != *filter.ClientID {
			continue
		}
		items = append(items, *m.snapshot(req))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	out, total := pageOf(items, page)
	return out, total, nil
}

func (m memRequests) UpdateStatus(_ context.Context, id uuid.UUID, from, to valueobject.RequestStatus) (*models.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok || req.Status != from {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition, "статус заявки изменился, повторите операцию")
	}
	req.Status = to
	req.UpdatedAt = time.Now()
	return m.snapshot(req), nil
}

type memPitches struct{ *memStore }

func (m memPitches) Create(_ context.Context, pitch *models.Pitch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.pitches {
		if p.RequestID == pitch.RequestID && p.ProviderID == pitch.ProviderID {
			return apperror.ErrDuplicatePitch
		}
	}
	pitch.ID = uuid.New()
	pitch.CreatedAt = time.Now()
	pitch.UpdatedAt = pitch.CreatedAt
	stored := *pitch
	m.pitches = append(m.pitches, &stored)
	return nil
}

func (m memPitches) find(match func(*models.Pitch) bool) (*models.Pitch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.pitches {
		if match(p) {
			out := *p
			return &out, nil
		}
	}
	return nil, apperror.ErrPitchNotFound
}

func (m memPitches) GetByID(_ context.Context, id uuid.UUID) (*models.Pitch, error) {
	return m.find(func(p *models.Pitch) bool { return p.ID == id })
}

func (m memPitches) GetByRequestAndProvider(_ context.Context, requestID, providerID uuid.UUID) (*models.Pitch, error) {
	return m.find(func(p *models.Pitch) bool { return p.RequestID == requestID && p.ProviderID == providerID })
}

func (m memPitches) list(match func(*models.Pitch) bool, page pagination.Params) ([]models.Pitch, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []models.Pitch
	for _, p := range m.pitches {
		if match(p) {
			items = append(items, *p)
		}
	}
	out, total := pageOf(items, page)
	return out, total, nil
}

func (m memPitches) ListByRequest(_ context.Context, requestID uuid.UUID, page pagination.Params) ([]models.Pitch, int64, error) {
	return m.list(func(p *models.Pitch) bool { return p.RequestID == requestID }, page)
}

func (m memPitches) ListByProvider(_ context.Context, providerID uuid.UUID, page pagination.Params) ([]models.Pitch, int64, error) {
	return m.list(func(p *models.Pitch) bool { return p.ProviderID == providerID }, page)
}

func (m memPitches) ListPendingProviders(_ context.Context, requestID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for _, p := range m.pitches {
		if p.RequestID == requestID && p.Status == valueobject.PitchStatusPending {
			ids = append(ids, p.ProviderID)
		}
	}
	return ids, nil
}

func (m memPitches) SelectWinner(_ context.Context, requestID, pitchID uuid.UUID) (*models.PitchSelection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return nil, apperror.ErrRequestNotFound
	}
	if err := req.Status.CheckTransition(valueobject.RequestStatusAssigned); err != nil {
		return nil, err
	}

	var winner *models.Pitch
	for _, p := range m.pitches {
		if p.ID == pitchID && p.RequestID == requestID {
			winner = p
		}
	}
	if winner == nil {
		return nil, apperror.ErrPitchNotFound
	}

	sel := &models.PitchSelection{LosingPitches: []models.Pitch{}}
	for _, p := range m.pitches {
		if p.RequestID != requestID {
			continue
		}
		if p == winner {
			p.Status = valueobject.PitchStatusWin
		} else if p.Status == valueobject.PitchStatusPending {
			p.Status = valueobject.PitchStatusLose
			sel.LosingPitches = append(sel.LosingPitches, *p)
		}
	}
	req.Status = valueobject.RequestStatusAssigned
	providerID := winner.ProviderID
	req.AssignedProviderID = &providerID

	won := *winner
	sel.WinningPitch = &won
	sel.Request = memRequests{m.memStore}.snapshot(req)
	return sel, nil
}

type memPayments struct{ *memStore }

func (m memPayments) Create(_ context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.payments {
		if existing.RequestID == p.RequestID && existing.Status != valueobject.PaymentStatusFailed {
			return apperror.ErrPaymentExists
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	m.payments = append(m.payments, &stored)
	return nil
}

func (m memPayments) GetByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.ID == id {
			out := *p
			return &out, nil
		}
	}
	return nil, apperror.ErrPaymentNotFound
}

func (m memPayments) LatestByRequest(_ context.Context, requestID uuid.UUID) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.payments) - 1; i >= 0; i-- {
		if m.payments[i].RequestID == requestID {
			out := *m.payments[i]
			return &out, nil
		}
	}
	return nil, apperror.ErrPaymentNotFound
}

func (m memPayments) UpdateStatus(_ context.Context, id uuid.UUID, from, to valueobject.PaymentStatus) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.ID == id && p.Status == from {
			p.Status = to
			p.UpdatedAt = time.Now()
			out := *p
			return &out, nil
		}
	}
	return nil, apperror.New(apperror.ErrCodeInvalidTransition, "статус платежа изменился, повторите операцию")
}

func (m memPayments) SetGatewayRef(_ context.Context, id uuid.UUID, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.ID == id {
			p.GatewayRef = &ref
		}
	}
	return nil
}

func (m memPayments) ListByProvider(_ context.Context, providerID uuid.UUID, page pagination.Params) ([]models.Payment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []models.Payment
	for _, p := range m.payments {
		if p.ProviderID == providerID {
			items = append(items, *p)
		}
	}
	out, total := pageOf(items, page)
	return out, total, nil
}

type memReviews struct{ *memStore }

func (m memReviews) Create(_ context.Context, review *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.RequestID == review.RequestID {
			return apperror.ErrAlreadyReviewed
		}
	}
	review.ID = uuid.New()
	review.CreatedAt = time.Now()
	stored := *review
	m.reviews = append(m.reviews, &stored)
	return nil
}

func (m memReviews) ListByProvider(_ context.Context, providerID uuid.UUID, page pagination.Params) ([]models.Review, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []models.Review
	for _, r := range m.reviews {
		if r.ProviderID == providerID {
			items = append(items, *r)
		}
	}
	out, total := pageOf(items, page)
	return out, total, nil
}

type memNotifications struct{ *memStore }

func (m memNotifications) Create(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	stored := *n
	m.notifications = append(m.notifications, &stored)
	return nil
}

func (m memNotifications) List(_ context.Context, userID uuid.UUID, filter models.NotificationFilter, page pagination.Params) ([]models.Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []models.Notification
	for i := len(m.notifications) - 1; i >= 0; i-- {
		n := m.notifications[i]
		if n.UserID != userID || (filter.IsRead != nil && n.IsRead != *filter.IsRead) {
			continue
		}
		items = append(items, *n)
	}
	out, total := pageOf(items, page)
	return out, total, nil
}

func (m memNotifications) MarkRead(_ context.Context, userID, notificationID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.ID == notificationID && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return apperror.ErrNotificationNotFound
}

func (m memNotifications) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var changed int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			changed++
		}
	}
	return changed, nil
}

func (m memNotifications) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}
