package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/groupchat-backend/internal/chatview"
)

// Login helpers run before a Client exists, since a Client needs the
// access token the login flow produces.

type LoginResult struct {
	User         chatview.Author
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// Session converts the login result into a chatview session.
func (r *LoginResult) Session() *chatview.Session {
	return chatview.NewSession(r.User, r.AccessToken)
}

// RequestCode asks the server to issue a one-time code for the phone
// number.
func RequestCode(ctx context.Context, baseURL, phone string) error {
	return postJSON(ctx, baseURL, "/auth/request-code", map[string]string{"phone": phone}, nil)
}

// VerifyCode exchanges phone + code for a token pair.
func VerifyCode(ctx context.Context, baseURL, phone, code string) (*LoginResult, error) {
	var resp struct {
		User         *userRecord `json:"user"`
		AccessToken  string      `json:"access_token"`
		RefreshToken string      `json:"refresh_token"`
		ExpiresIn    int         `json:"expires_in"`
	}
	body := map[string]string{"phone": phone, "code": code}
	if err := postJSON(ctx, baseURL, "/auth/verify", body, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil || resp.User.ID == "" || resp.AccessToken == "" {
		return nil, ErrBadRecord
	}
	return &LoginResult{
		User: chatview.Author{
			ID:        resp.User.ID,
			Name:      resp.User.Name,
			Email:     resp.User.Email,
			AvatarURL: resp.User.AvatarURL,
		},
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	}, nil
}

func postJSON(ctx context.Context, baseURL, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	endpoint := strings.TrimRight(baseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: "request failed"}
		var envelope struct {
			Error struct {
				Message string `json:"message"`
				Code    string `json:"code"`
			} `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr == nil && envelope.Error.Message != "" {
			apiErr.Message = envelope.Error.Message
			apiErr.Code = envelope.Error.Code
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
