package masto

import (
	"context"
	"strconv"
	"time"
)

const (
	getNotifications   = "/api/v1/notifications"
	clearNotifications = "/api/v1/notifications/clear"
)

// https://docs.joinmastodon.org/entities/Notification/
type Notification struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	CreatedAt time.Time     `json:"created_at"`
	Account   StatusAccount `json:"account"`
	Status    *Status       `json:"status"`
}

func (c *Client) Notifications(ctx context.Context, token string, limit int) ([]*Notification, error) {
	notifications := []*Notification{}
	res, err := checkResponse(c.r(ctx, token).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&notifications).
		Get(getNotifications))
	if err != nil {
		return nil, err
	}
	return *res.Result().(*[]*Notification), nil
}

func (c *Client) ClearNotifications(ctx context.Context, token string) error {
	_, err := checkResponse(c.r(ctx, token).Post(clearNotifications))
	return err
}
