package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eventmarket-backend/internal/models"
	"github.com/ignatzorin/eventmarket-backend/internal/pagination"
	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = uuid.New()
		user.CreatedAt = time.Now()
		user.UpdatedAt = user.CreatedAt
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockUserRepo) UpdateAccountStatus(ctx context.Context, userID uuid.UUID, status valueobject.AccountStatus, reason *string) (*models.User, error) {
	args := m.Called(ctx, userID, status, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockRequestRepo struct {
	mock.Mock
}

func (m *mockRequestRepo) Create(ctx context.Context, req *models.ServiceRequest) error {
	args := m.Called(ctx, req)
	if args.Error(0) == nil {
		req.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// копия, чтобы тест видел исходное состояние
	req := *args.Get(0).(*models.ServiceRequest)
	return &req, args.Error(1)
}

func (m *mockRequestRepo) List(ctx context.Context, filter models.RequestFilter, page pagination.Params) ([]models.ServiceRequest, int64, error) {
	args := m.Called(ctx, filter, page)
	items, _ := args.Get(0).([]models.ServiceRequest)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockRequestRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to valueobject.RequestStatus) (*models.ServiceRequest, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

type mockPitchRepo struct {
	mock.Mock
}

func (m *mockPitchRepo) Create(ctx context.Context, pitch *models.Pitch) error {
	args := m.Called(ctx, pitch)
	if args.Error(0) == nil {
		pitch.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockPitchRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Pitch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pitch), args.Error(1)
}

func (m *mockPitchRepo) GetByRequestAndProvider(ctx context.Context, requestID, providerID uuid.UUID) (*models.Pitch, error) {
	args := m.Called(ctx, requestID, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pitch), args.Error(1)
}

func (m *mockPitchRepo) ListByRequest(ctx context.Context, requestID uuid.UUID, page pagination.Params) ([]models.Pitch, int64, error) {
	args := m.Called(ctx, requestID, page)
	items, _ := args.Get(0).([]models.Pitch)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockPitchRepo) ListByProvider(ctx context.Context, providerID uuid.UUID, page pagination.Params) ([]models.Pitch, int64, error) {
	args := m.Called(ctx, providerID, page)
	items, _ := args.Get(0).([]models.Pitch)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockPitchRepo) ListPendingProviders(ctx context.Context, requestID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, requestID)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

func (m *mockPitchRepo) SelectWinner(ctx context.Context, requestID, pitchID uuid.UUID) (*models.PitchSelection, error) {
	args := m.Called(ctx, requestID, pitchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PitchSelection), args.Error(1)
}

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil {
		p.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) LatestByRequest(ctx context.Context, requestID uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to valueobject.PaymentStatus) (*models.Payment, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) SetGatewayRef(ctx context.Context, id uuid.UUID, ref string) error {
	return m.Called(ctx, id, ref).Error(0)
}

func (m *mockPaymentRepo) ListByProvider(ctx context.Context, providerID uuid.UUID, page pagination.Params) ([]models.Payment, int64, error) {
	args := m.Called(ctx, providerID, page)
	items, _ := args.Get(0).([]models.Payment)
	return items, args.Get(1).(int64), args.Error(2)
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	if args.Error(0) == nil {
		review.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockReviewRepo) ListByProvider(ctx context.Context, providerID uuid.UUID, page pagination.Params) ([]models.Review, int64, error) {
	args := m.Called(ctx, providerID, page)
	items, _ := args.Get(0).([]models.Review)
	return items, args.Get(1).(int64), args.Error(2)
}

// memNotificationRepo хранит уведомления в памяти и считает непрочитанные честно.
type memNotificationRepo struct {
	mu    sync.Mutex
	items []models.Notification
}

func (r *memNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	r.items = append(r.items, *n)
	return nil
}

func (r *memNotificationRepo) List(_ context.Context, userID uuid.UUID, filter models.NotificationFilter, page pagination.Params) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []models.Notification
	for _, n := range r.items {
		if n.UserID != userID {
			continue
		}
		if filter.IsRead != nil && n.IsRead != *filter.IsRead {
			continue
		}
		matched = append(matched, n)
	}
	total := int64(len(matched))
	start := page.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + page.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items[i].IsRead = true
			return nil
		}
	}
	return apperror.ErrNotificationNotFound
}

func (r *memNotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.items {
		if r.items[i].UserID == userID && !r.items[i].IsRead {
			r.items[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *memNotificationRepo) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, item := range r.items {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

// eventsFor возвращает типы уведомлений, созданных для пользователя.
func (r *memNotificationRepo) eventsFor(userID uuid.UUID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.items {
		if n.UserID == userID {
			out = append(out, n.Type)
		}
	}
	return out
}

// newSyncNotifier доставляет уведомления синхронно, чтобы тест сразу видел результат.
func newSyncNotifier() (*Notifier, *memNotificationRepo) {
	repo := &memNotificationRepo{}
	n := NewNotifier(repo, nil, time.Second)
	n.dispatch = func(timeout time.Duration, fn func(context.Context)) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		fn(ctx)
	}
	return n, repo
}

func clientCaller() models.Caller {
	return models.Caller{ID: uuid.New(), Role: valueobject.RoleClient, AccountStatus: valueobject.AccountStatusActive}
}

func providerCaller() models.Caller {
	return models.Caller{ID: uuid.New(), Role: valueobject.RoleProvider, AccountStatus: valueobject.AccountStatusActive}
}

func adminCaller() models.Caller {
	return models.Caller{ID: uuid.New(), Role: valueobject.RoleAdmin, AccountStatus: valueobject.AccountStatusActive}
}

func paramsFirstPage() pagination.Params {
	return pagination.Params{Page: 0, Size: pagination.DefaultSize}
}
