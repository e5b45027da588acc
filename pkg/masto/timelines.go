package masto

import (
	"context"
	"strconv"
)

const (
	homeTimeline    = "/api/v1/timelines/home"
	publicTimeline  = "/api/v1/timelines/public"
	accountStatuses = "/api/v1/accounts/{id}/statuses"
)

func (c *Client) timelineGet(ctx context.Context, token, path string, limit int) ([]*Status, error) {
	statuses := []*Status{}
	res, err := checkResponse(c.r(ctx, token).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&statuses).
		Get(path))
	if err != nil {
		return nil, err
	}
	return *res.Result().(*[]*Status), nil
}

func (c *Client) HomeTimeline(ctx context.Context, token string, limit int) ([]*Status, error) {
	return c.timelineGet(ctx, token, homeTimeline, limit)
}

func (c *Client) PublicTimeline(ctx context.Context, token string, limit int) ([]*Status, error) {
	return c.timelineGet(ctx, token, publicTimeline, limit)
}

func (c *Client) AccountStatuses(ctx context.Context, token, id string, limit int) ([]*Status, error) {
	statuses := []*Status{}
	res, err := checkResponse(c.r(ctx, token).
		SetPathParam("id", id).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&statuses).
		Get(accountStatuses))
	if err != nil {
		return nil, err
	}
	return *res.Result().(*[]*Status), nil
}
