// Package client - Go клиент API маркетплейса услуг для мероприятий.
// Держит токен сессии и отклоняет локально то, что не должно уходить в сеть:
// действия заблокированного аккаунта и заведомо неверный ввод.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
)

const defaultTimeout = 30 * time.Second

// Client безопасен для конкурентного использования.
type Client struct {
	baseURL        string
	http           *http.Client
	session        *Session
	store          TokenStore
	limiter        *rate.Limiter
	ratings        valueobject.RatingRange
	supportContact string
}

// Option настраивает Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTokenStore(store TokenStore) Option {
	return func(c *Client) { c.store = store }
}

// WithRateLimit ограничивает частоту исходящих запросов.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(limit, burst) }
}

func WithRatingRange(r valueobject.RatingRange) Option {
	return func(c *Client) { c.ratings = r }
}

// WithSupportContact задаёт контакт поддержки для локальной ошибки блокировки.
func WithSupportContact(contact string) Option {
	return func(c *Client) { c.supportContact = contact }
}

// New создаёт клиент. baseURL указывает на корень сервера, без /api.
func New(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("client: некорректный адрес сервера: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api",
		http:    &http.Client{Timeout: defaultTimeout},
		ratings: valueobject.DefaultRatingRange,
	}
	for _, opt := range opts {
		opt(c)
	}

	session, err := NewSession(c.store)
	if err != nil {
		return nil, err
	}
	c.session = session
	return c, nil
}

// Session возвращает сессию клиента.
func (c *Client) Session() *Session {
	return c.session
}

// Claims возвращает клеймы текущего токена.
func (c *Client) Claims() (*Claims, error) {
	return c.session.Claims()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// call описывает один запрос к API.
type call struct {
	method string
	path   string
	query  url.Values
	body   any
	out    any

	// mutating запросы проходят локальную проверку блокировки.
	mutating bool
	// check - локальная валидация ввода, выполняется после проверки блокировки.
	check func() error
}

// guard отклоняет изменяющие запросы заблокированного аккаунта без обращения к сети.
func (c *Client) guard() error {
	state, ok := c.session.suspendedState()
	if !ok {
		return nil
	}
	contact := state.contact
	if contact == "" {
		contact = c.supportContact
	}
	return &Error{
		Kind:    KindAccountSuspended,
		Code:    string(apperror.ErrCodeAccountSuspended),
		Message: "аккаунт заблокирован",
		Reason:  state.reason,
		Contact: contact,
	}
}

func (c *Client) do(ctx context.Context, req call) error {
	if req.mutating {
		if err := c.guard(); err != nil {
			return err
		}
	}
	if req.check != nil {
		if err := req.check(); err != nil {
			return err
		}
	}
	token, epoch := c.session.Token()
	return c.send(ctx, token, epoch, req)
}

func (c *Client) send(ctx context.Context, token string, epoch uint64, req call) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("client: не удалось сериализовать запрос: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return fmt.Errorf("client: не удалось собрать запрос: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: не удалось прочитать ответ: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeError(resp.StatusCode, raw)
		switch apiErr.Kind {
		case KindUnauthenticated:
			if token != "" && apiErr.Code != string(apperror.ErrCodeInvalidCredentials) {
				_ = c.session.invalidate(epoch)
			}
		case KindAccountSuspended:
			c.session.markSuspended(epoch, apiErr.Reason, apiErr.Contact)
		}
		return apiErr
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || !env.Success {
		return &Error{Kind: KindUnknown, Status: resp.StatusCode, Message: defaultErrorMessage}
	}
	if req.out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, req.out); err != nil {
		return &Error{Kind: KindUnknown, Status: resp.StatusCode, Message: defaultErrorMessage}
	}
	return nil
}
