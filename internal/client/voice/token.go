package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dkeye/Huddle/internal/domain"
)

// HTTPTokenSource asks the server's token endpoint for media credentials.
// Share the client's cookie jar with the signaling dialer so the server
// recognises the same browser-like session on both.
type HTTPTokenSource struct {
	endpoint string
	client   *http.Client
}

func NewHTTPTokenSource(baseURL string, client *http.Client) *HTTPTokenSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTokenSource{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/voice/token",
		client:   client,
	}
}

type tokenRequest struct {
	ChannelID domain.ChannelID `json:"channelId"`
	UserID    domain.UserID    `json:"userId"`
	Username  string           `json:"username,omitempty"`
}

func (s *HTTPTokenSource) Token(ctx context.Context, ch domain.ChannelID, user domain.User) (Credentials, error) {
	body, err := json.Marshal(tokenRequest{ChannelID: ch, UserID: user.ID, Username: user.Username})
	if err != nil {
		return Credentials{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return Credentials{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Credentials{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return Credentials{}, fmt.Errorf("token endpoint: %s: %s", resp.Status, e.Error)
	}
	var c Credentials
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		return Credentials{}, fmt.Errorf("decode token response: %w", err)
	}
	if c.Token == "" || c.URL == "" {
		return Credentials{}, fmt.Errorf("token endpoint: incomplete credentials")
	}
	return c, nil
}
