package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/models"
)

// Notifications возвращает ленту уведомлений. isRead=nil - все.
func (c *Client) Notifications(ctx context.Context, isRead *bool, page PageQuery) (*Page[models.Notification], error) {
	if err := page.validate(); err != nil {
		return nil, err
	}
	query := page.values()
	if isRead != nil {
		query.Set("isRead", strconv.FormatBool(*isRead))
	}

	var result Page[models.Notification]
	if err := c.do(ctx, call{method: http.MethodGet, path: "/notifications", query: query, out: &result}); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) UnreadCount(ctx context.Context) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	if err := c.do(ctx, call{method: http.MethodGet, path: "/notifications/unread-count", out: &out}); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// MarkRead идемпотентна.
func (c *Client) MarkRead(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, call{method: http.MethodPut, path: "/notifications/" + id.String() + "/read", mutating: true})
}

// MarkAllRead возвращает число отмеченных уведомлений.
func (c *Client) MarkAllRead(ctx context.Context) (int64, error) {
	var out struct {
		Updated int64 `json:"updated"`
	}
	if err := c.do(ctx, call{method: http.MethodPut, path: "/notifications/read-all", out: &out, mutating: true}); err != nil {
		return 0, err
	}
	return out.Updated, nil
}
