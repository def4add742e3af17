package httpstore

import (
	"context"
	"fmt"
	"net/url"
)

// Group is the slim projection the conversation picker needs; the full
// record stays server-side.
type Group struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	var resp struct {
		Groups []Group `json:"groups"`
	}
	if err := c.doJSON(ctx, "GET", "/groups", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Groups, nil
}

func (c *Client) CreateGroup(ctx context.Context, name, description string) (*Group, error) {
	body := map[string]string{"name": name, "description": description}
	var resp struct {
		Group *Group `json:"group"`
	}
	if err := c.doJSON(ctx, "POST", "/groups", body, &resp); err != nil {
		return nil, err
	}
	if resp.Group == nil || resp.Group.ID == "" {
		return nil, fmt.Errorf("%w: group record missing id", ErrBadRecord)
	}
	return resp.Group, nil
}

func (c *Client) JoinGroup(ctx context.Context, groupID string) error {
	return c.doJSON(ctx, "POST", "/groups/"+url.PathEscape(groupID)+"/join", nil, nil)
}
