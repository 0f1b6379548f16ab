package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/you/portalauth/domain"
)

// HTTPAuthAPI implements domain.AuthAPI against the portal backend:
// POST auth/{role}/register, POST auth/login, GET auth/profile.
type HTTPAuthAPI struct {
	baseURL string
	client  *http.Client
}

// NewHTTPAuthAPI creates a backend client.
func NewHTTPAuthAPI(baseURL string) *HTTPAuthAPI {
	return &HTTPAuthAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Register implements domain.AuthAPI
func (a *HTTPAuthAPI) Register(ctx context.Context, payload *domain.RegisterPayload) (*domain.User, error) {
	body := map[string]string{
		"identifier": payload.Identifier,
		"password":   payload.Password,
		"firstName":  payload.FirstName,
		"lastName":   payload.LastName,
	}
	for k, v := range payload.Fields {
		body[k] = v
	}

	url := fmt.Sprintf("%s/auth/%s/register", a.baseURL, strings.ToLower(payload.Role))
	var out domain.User
	if err := a.post(ctx, url, "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login implements domain.AuthAPI
func (a *HTTPAuthAPI) Login(ctx context.Context, identifier, password string) (*domain.LoginResult, error) {
	body := map[string]string{"identifier": identifier, "password": password}

	var out struct {
		Token      string       `json:"token"`
		Role       string       `json:"role"`
		Identifier string       `json:"identifier"`
		User       *domain.User `json:"user"`
	}
	if err := a.post(ctx, a.baseURL+"/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return &domain.LoginResult{
		Token:      out.Token,
		Role:       out.Role,
		Identifier: out.Identifier,
		User:       out.User,
	}, nil
}

// Profile implements domain.AuthAPI
func (a *HTTPAuthAPI) Profile(ctx context.Context, token string) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/auth/profile", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError(resp)
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return flatten(raw), nil
}

func (a *HTTPAuthAPI) post(ctx context.Context, url, token string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeAPIError lifts the server's message and error fields into a
// structured APIError so the session machine can pick the most specific
// message.
func decodeAPIError(resp *http.Response) error {
	apiErr := &domain.APIError{Status: resp.StatusCode}
	var body struct {
		Message string `json:"message"`
		Err     string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Message
		apiErr.Err = body.Err
	}
	return apiErr
}

// flatten keeps scalar fields of a loosely-typed profile response.
func flatten(raw map[string]any) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64, bool, json.Number:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}
