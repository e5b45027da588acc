package masto

import (
	"context"
)

const (
	followAccount   = "/api/v1/accounts/{id}/follow"
	unfollowAccount = "/api/v1/accounts/{id}/unfollow"
	blockAccount    = "/api/v1/accounts/{id}/block"
	unblockAccount  = "/api/v1/accounts/{id}/unblock"
	muteAccount     = "/api/v1/accounts/{id}/mute"
	unmuteAccount   = "/api/v1/accounts/{id}/unmute"
	lookupAccount   = "/api/v1/accounts/lookup"

	updateCredentials = "/api/v1/accounts/update_credentials"
)

// https://docs.joinmastodon.org/entities/Relationship/
type Relationship struct {
	ID        string `json:"id"`
	Following bool   `json:"following"`
	Blocking  bool   `json:"blocking"`
	Muting    bool   `json:"muting"`
}

func (c *Client) relationshipPost(ctx context.Context, token, path, id string) (*Relationship, error) {
	res, err := checkResponse(c.r(ctx, token).
		SetPathParam("id", id).
		SetResult(&Relationship{}).
		Post(path))
	if err != nil {
		return nil, err
	}
	return res.Result().(*Relationship), nil
}

func (c *Client) Follow(ctx context.Context, token, id string) (*Relationship, error) {
	return c.relationshipPost(ctx, token, followAccount, id)
}

func (c *Client) Unfollow(ctx context.Context, token, id string) (*Relationship, error) {
	return c.relationshipPost(ctx, token, unfollowAccount, id)
}

func (c *Client) Block(ctx context.Context, token, id string) (*Relationship, error) {
	return c.relationshipPost(ctx, token, blockAccount, id)
}

func (c *Client) Unblock(ctx context.Context, token, id string) (*Relationship, error) {
	return c.relationshipPost(ctx, token, unblockAccount, id)
}

func (c *Client) Mute(ctx context.Context, token, id string) (*Relationship, error) {
	return c.relationshipPost(ctx, token, muteAccount, id)
}

func (c *Client) Unmute(ctx context.Context, token, id string) (*Relationship, error) {
	return c.relationshipPost(ctx, token, unmuteAccount, id)
}

// Lookup resolves an account handle to its server-side ID.
func (c *Client) Lookup(ctx context.Context, token, acct string) (*StatusAccount, error) {
	res, err := checkResponse(c.r(ctx, token).
		SetQueryParam("acct", acct).
		SetResult(&StatusAccount{}).
		Get(lookupAccount))
	if err != nil {
		return nil, err
	}
	return res.Result().(*StatusAccount), nil
}

// UpdateCredentials patches the account's display name and bio.
func (c *Client) UpdateCredentials(ctx context.Context, token, displayName, note string) error {
	_, err := checkResponse(c.r(ctx, token).
		SetFormData(map[string]string{
			"display_name": displayName,
			"note":         note,
		}).
		Patch(updateCredentials))
	return err
}
