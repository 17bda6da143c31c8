package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rhuss/anfrage/pkg/debug"
	"github.com/rhuss/anfrage/pkg/observability"
)

// tokenRequest is the JSON body sent to the OAuth token endpoint.
type tokenRequest struct {
	ClientID     string `json:"client_id"`
	GrantType    string `json:"grant_type"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// tokenResponse is the JSON returned by a successful exchange. The refresh
// token may be omitted, in which case the previous one stays valid.
type tokenResponse struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ensureSession returns a usable session, refreshing at most once across
// all concurrent callers. A session whose expiry is unknown or further than
// the margin away is returned without any network call.
func (m *Manager) ensureSession(ctx context.Context) (*session, error) {
	m.mu.Lock()
	current := m.session
	m.mu.Unlock()

	if current != nil && current.accessToken != "" && m.usable(current.expiresAt) {
		return current, nil
	}

	// Late joiners await the in-flight exchange instead of starting their
	// own; the slot clears on completion regardless of outcome.
	v, err, _ := m.group.Do("session", func() (any, error) {
		m.mu.Lock()
		s := m.session
		m.mu.Unlock()

		// A caller that queued behind a finished refresh takes the result.
		if s != nil && s.accessToken != "" && m.usable(s.expiresAt) {
			return s, nil
		}
		if s == nil || s.refreshToken == "" {
			return nil, fmt.Errorf("auth: no refresh token available for session renewal")
		}

		next, err := m.exchange(ctx, s.refreshToken)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.session = next
		m.mu.Unlock()
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*session), nil
}

// exchange performs the refresh_token grant and builds the superseding
// session. The account id inside the identity token is mandatory.
func (m *Manager) exchange(ctx context.Context, refreshToken string) (*session, error) {
	body, err := json.Marshal(tokenRequest{
		ClientID:     oauthClientID,
		GrantType:    "refresh_token",
		RefreshToken: refreshToken,
		Scope:        oauthScope,
	})
	if err != nil {
		return nil, fmt.Errorf("auth: marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.tokenURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("auth: create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	debug.Log("auth", "token exchange", "url", m.tokenURL)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		observability.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("auth: token exchange: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("auth: read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		observability.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("auth: token exchange failed (%d): %s; run your login flow again to obtain a fresh refresh token", resp.StatusCode, respBody)
	}

	var tr tokenResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		observability.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("auth: decode token response: %w", err)
	}

	accountID, expiresAt, err := decodeIdentityToken(tr.IDToken)
	if err != nil {
		observability.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	next := &session{
		idToken:      tr.IDToken,
		accessToken:  tr.AccessToken,
		refreshToken: tr.RefreshToken,
		accountID:    accountID,
		expiresAt:    expiresAt,
	}
	// The old refresh token stays valid when the exchange omits a new one.
	if next.refreshToken == "" {
		next.refreshToken = refreshToken
	}

	observability.TokenRefreshesTotal.WithLabelValues("ok").Inc()
	return next, nil
}
