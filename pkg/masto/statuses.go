package masto

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	postStatus      = "/api/v1/statuses"
	favouriteStatus = "/api/v1/statuses/{id}/favourite"
	reblogStatus    = "/api/v1/statuses/{id}/reblog"
)

// https://docs.joinmastodon.org/entities/Status/
type Status struct {
	ID         string  `json:"id"`
	URI        string  `json:"uri"`
	Content    string  `json:"content"`
	Visibility string  `json:"visibility"`
	Spoiler    string  `json:"spoiler_text"`
	InReplyTo  *string `json:"in_reply_to_id"`

	CreatedAt time.Time `json:"created_at"`

	FavouritesCount int `json:"favourites_count"`
	ReblogsCount    int `json:"reblogs_count"`

	Account StatusAccount `json:"account"`
	Reblog  *Status       `json:"reblog"`
}

type StatusAccount struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

type PostStatusRequest struct {
	Status      string  `json:"status"`
	Visibility  string  `json:"visibility,omitempty"`
	SpoilerText string  `json:"spoiler_text,omitempty"`
	InReplyToID *string `json:"in_reply_to_id,omitempty"`
}

// PostStatus creates a status. An Idempotency-Key header guards against
// duplicate posts on retried requests.
func (c *Client) PostStatus(ctx context.Context, token string, req PostStatusRequest) (*Status, error) {
	res, err := checkResponse(c.r(ctx, token).
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetBody(req).
		SetResult(&Status{}).
		Post(postStatus))
	if err != nil {
		return nil, err
	}
	return res.Result().(*Status), nil
}

// https://docs.joinmastodon.org/methods/statuses/#favourite
func (c *Client) Favourite(ctx context.Context, token, id string) (*Status, error) {
	res, err := checkResponse(c.r(ctx, token).
		SetPathParam("id", id).
		SetResult(&Status{}).
		Post(favouriteStatus))
	if err != nil {
		return nil, err
	}
	return res.Result().(*Status), nil
}

// https://docs.joinmastodon.org/methods/statuses/#boost
func (c *Client) Reblog(ctx context.Context, token, id string) (*Status, error) {
	res, err := checkResponse(c.r(ctx, token).
		SetPathParam("id", id).
		SetResult(&Status{}).
		Post(reblogStatus))
	if err != nil {
		return nil, err
	}
	return res.Result().(*Status), nil
}
