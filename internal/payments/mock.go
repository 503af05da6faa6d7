package payments

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/logger"
)

// MockGateway подтверждает любые списания. Используется в разработке и тестах.
type MockGateway struct {
	mu      sync.Mutex
	failErr error
	charges []ChargeRequest
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (g *MockGateway) Name() string { return "mock" }

// FailWith заставляет следующие списания завершаться ошибкой; nil возвращает обычный режим.
func (g *MockGateway) FailWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failErr = err
}

// Charges возвращает копию принятых запросов.
func (g *MockGateway) Charges() []ChargeRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]ChargeRequest, len(g.charges))
	copy(out, g.charges)
	return out
}

func (g *MockGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.charges = append(g.charges, req)
	if g.failErr != nil {
		return nil, g.failErr
	}

	ref := "mock_" + uuid.NewString()
	logger.WithFields(map[string]interface{}{
		"payment_id": req.PaymentID,
		"amount":     req.Amount.String(),
		"reference":  ref,
	}).Debug("payments: mock списание принято")

	return &ChargeResult{Reference: ref, Status: "accepted"}, nil
}
