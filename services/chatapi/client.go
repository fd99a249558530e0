// Package chatapi implements chat.Backend against the Classio server: REST
// for fetches and commands, one websocket per push subscription.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/classio/classio/core"
	"github.com/classio/classio/core/chat"
	"github.com/classio/classio/core/user"
)

type Client struct {
	conf  core.ChatConfig
	http  *http.Client
	token string
	log   core.Logger
}

var _ chat.Backend = (*Client)(nil)

// NewClient builds a backend client authenticating every call with the given
// session token.
func NewClient(conf *core.Config, token string, log core.Logger) *Client {
	if log == nil {
		log = core.NopLogger{}
	}
	return &Client{
		conf:  conf.Chat,
		http:  &http.Client{},
		token: token,
		log:   log,
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.conf.APIBaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		rdr = bytes.NewReader(data)
	} else {
		rdr = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Request-ID", uuid.NewString())

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{Status: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(res.Body).Decode(&payload); err == nil && payload.Error != "" {
			apiErr.Message = payload.Error
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decoding %s %s response", method, path)
	}
	return nil
}

func (c *Client) Conversations(ctx context.Context) ([]chat.Conversation, error) {
	var convs []chat.Conversation
	err := c.get(ctx, "/v1/chat/conversations", nil, &convs)
	return convs, err
}

func (c *Client) DirectMessages(ctx context.Context, conversationID, beforeID string, limit int) ([]chat.Message, error) {
	return c.messages(ctx, "/v1/chat/conversations/"+conversationID+"/messages", beforeID, limit)
}

func (c *Client) GroupMessages(ctx context.Context, groupID, beforeID string, limit int) ([]chat.Message, error) {
	return c.messages(ctx, "/v1/chat/groups/"+groupID+"/messages", beforeID, limit)
}

func (c *Client) messages(ctx context.Context, path, beforeID string, limit int) ([]chat.Message, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if beforeID != "" {
		query.Set("before", beforeID)
	}
	var msgs []chat.Message
	err := c.get(ctx, path, query, &msgs)
	return msgs, err
}

type sendPayload struct {
	Content string `json:"content"`
}

func (c *Client) SendDirectMessage(ctx context.Context, conversationID, content string) error {
	return c.post(ctx, "/v1/chat/conversations/"+conversationID+"/messages", sendPayload{content}, nil)
}

func (c *Client) SendGroupMessage(ctx context.Context, groupID, content string) error {
	return c.post(ctx, "/v1/chat/groups/"+groupID+"/messages", sendPayload{content}, nil)
}

func (c *Client) MarkDirectMessagesRead(ctx context.Context, conversationID string) error {
	return c.post(ctx, "/v1/chat/conversations/"+conversationID+"/read", nil, nil)
}

func (c *Client) MarkGroupMessagesRead(ctx context.Context, groupID string) error {
	return c.post(ctx, "/v1/chat/groups/"+groupID+"/read", nil, nil)
}

func (c *Client) TotalUnreadCount(ctx context.Context) (int, error) {
	var payload struct {
		Count int `json:"count"`
	}
	err := c.get(ctx, "/v1/chat/unread-count", nil, &payload)
	return payload.Count, err
}

func (c *Client) AvailableRecipients(ctx context.Context) ([]user.User, error) {
	var users []user.User
	err := c.get(ctx, "/v1/chat/recipients", nil, &users)
	return users, err
}

func (c *Client) SearchUsers(ctx context.Context, query string) ([]user.User, error) {
	var users []user.User
	err := c.get(ctx, "/v1/chat/users/search", url.Values{"q": {query}}, &users)
	return users, err
}

type newGroupPayload struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
}

func (c *Client) CreateGroup(ctx context.Context, name string, memberIDs []string) (chat.Group, error) {
	var grp chat.Group
	err := c.post(ctx, "/v1/chat/groups", newGroupPayload{name, memberIDs}, &grp)
	return grp, err
}

func (c *Client) UserGroups(ctx context.Context) ([]chat.Group, error) {
	var groups []chat.Group
	err := c.get(ctx, "/v1/chat/groups", nil, &groups)
	return groups, err
}

func (c *Client) Group(ctx context.Context, groupID string) (*chat.Group, error) {
	var grp chat.Group
	err := c.get(ctx, "/v1/chat/groups/"+groupID, nil, &grp)
	if apiErr, ok := err.(*APIError); ok && apiErr.Status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &grp, nil
}
