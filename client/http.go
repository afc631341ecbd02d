// Package client is the remote chat gateway: one typed method per backend
// endpoint, plus the identity provider's custom-token exchange. All bearer
// operations wait on the token-readiness guard first and retry exactly once
// when the identity layer rejects a token as used too early.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/miosa/splash-tui/auth"
)

type Client struct {
	BaseURL     string
	IdentityURL string
	APIKey      string
	Token       string
	HTTPClient  *http.Client
	Guard       *auth.ReadyGuard

	sleep func(time.Duration)
}

// New returns a gateway client for the given backend and identity provider.
func New(baseURL, identityURL, apiKey string, guard *auth.ReadyGuard) *Client {
	return &Client{
		BaseURL:     baseURL,
		IdentityURL: identityURL,
		APIKey:      apiKey,
		HTTPClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		Guard: guard,
		sleep: time.Sleep,
	}
}

func (c *Client) SetToken(token string) {
	c.Token = token
}

// Signup registers a new account.
func (c *Client) Signup(req SignupRequest) (*SignupResponse, error) {
	resp, err := c.postJSON("/auth/signup", req)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return nil, c.parseError(resp)
	}
	var result SignupResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode signup: %w", err)
	}
	return &result, nil
}

// Login authenticates against the backend, returning a custom token to be
// exchanged with the identity provider.
func (c *Client) Login(req LoginRequest) (*LoginResponse, error) {
	resp, err := c.postJSON("/auth/login", req)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}
	var result LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode login: %w", err)
	}
	return &result, nil
}

// ExchangeToken trades a custom token for an ID token at the identity
// provider. On success the client adopts the ID token as its bearer token
// and records the issuance instant on the guard, starting the grace period.
func (c *Client) ExchangeToken(customToken string) (*TokenExchangeResponse, error) {
	url := fmt.Sprintf("%s/v1/accounts:signInWithCustomToken?key=%s", c.IdentityURL, c.APIKey)
	data, err := json.Marshal(TokenExchangeRequest{Token: customToken, ReturnSecureToken: true})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	req, err := http.NewRequest("POST", url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, c.parseIdentityError(resp)
	}
	var result TokenExchangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode token exchange: %w", err)
	}
	c.Token = result.IDToken
	if c.Guard != nil {
		c.Guard.RecordIssuance(time.Now())
	}
	return &result, nil
}

// UploadFile sends a file as multipart form data. Type and size validation
// happens in the session store before this is ever called.
func (c *Client) UploadFile(name, mimeType string, data []byte) (*UploadResponse, error) {
	var result UploadResponse
	err := c.authed("upload file", http.StatusCreated, &result, func() (*http.Request, error) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("file", name)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		req, err := http.NewRequest("POST", c.BaseURL+"/upload", &buf)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", w.FormDataContentType())
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SendMessage posts a prompt (and optional file reference) to a session.
func (c *Client) SendMessage(sessionID string, chatReq ChatRequest) (*ChatResponse, error) {
	var result ChatResponse
	err := c.authed("send message", http.StatusOK, &result, func() (*http.Request, error) {
		return c.jsonRequest("POST", "/chat/"+sessionID, chatReq)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// History lists the user's chat sessions, titles and timestamps only.
func (c *Client) History() ([]HistoryItem, error) {
	var result []HistoryItem
	err := c.authed("get history", http.StatusOK, &result, func() (*http.Request, error) {
		return http.NewRequest("GET", c.BaseURL+"/history", nil)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Messages fetches the full message list of one session, oldest first.
func (c *Client) Messages(sessionID string) ([]MessageRecord, error) {
	var result []MessageRecord
	err := c.authed("get messages", http.StatusOK, &result, func() (*http.Request, error) {
		return http.NewRequest("GET", c.BaseURL+"/"+sessionID+"/messages", nil)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteChat removes one session server-side.
func (c *Client) DeleteChat(sessionID string) (*StatusResponse, error) {
	var result StatusResponse
	err := c.authed("delete chat", http.StatusOK, &result, func() (*http.Request, error) {
		return http.NewRequest("DELETE", c.BaseURL+"/history/"+sessionID, nil)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ClearHistory removes every session server-side.
func (c *Client) ClearHistory() (*StatusResponse, error) {
	var result StatusResponse
	err := c.authed("clear history", http.StatusOK, &result, func() (*http.Request, error) {
		return http.NewRequest("DELETE", c.BaseURL+"/history", nil)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// -- HTTP helpers -------------------------------------------------------------

// authed runs one bearer-authenticated request built by build, decoding a
// wantStatus response into out. It waits out the token grace period first
// and retries exactly once after a token-too-early rejection; any other
// failure is returned as-is.
func (c *Client) authed(op string, wantStatus int, out any, build func() (*http.Request, error)) error {
	if c.Token == "" {
		return fmt.Errorf("%s: %w", op, auth.ErrNotAuthenticated)
	}
	if c.Guard != nil {
		c.Guard.WaitUntilReady()
	}
	err := c.doOnce(op, wantStatus, out, build)
	if !isTokenTooEarly(err) {
		return err
	}
	log.Debug("token not yet valid, retrying once", "op", op)
	c.sleep(auth.TokenGracePeriod)
	return c.doOnce(op, wantStatus, out, build)
}

func (c *Client) doOnce(op string, wantStatus int, out any, build func() (*http.Request, error)) error {
	req, err := build()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		return c.parseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", op, err)
	}
	return nil
}

func (c *Client) jsonRequest(method, path string, body any) (*http.Request, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	req, err := http.NewRequest(method, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) postJSON(path string, body any) (*http.Response, error) {
	req, err := c.jsonRequest("POST", path, body)
	if err != nil {
		return nil, err
	}
	return c.HTTPClient.Do(req)
}

func (c *Client) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var apiErr errorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Detail != "" {
		return &APIError{Status: resp.StatusCode, Detail: apiErr.Detail}
	}
	return &APIError{Status: resp.StatusCode, Detail: string(body)}
}

func (c *Client) parseIdentityError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var idErr identityError
	if json.Unmarshal(body, &idErr) == nil && idErr.Error.Message != "" {
		return &APIError{Status: resp.StatusCode, Detail: idErr.Error.Message}
	}
	return &APIError{Status: resp.StatusCode, Detail: string(body)}
}
