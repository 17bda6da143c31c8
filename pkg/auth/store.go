package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Record is the persisted auth record shared with sibling tooling. Either
// an OAuth token set or a bare API key may be present.
type Record struct {
	Tokens      *TokenSet `json:"tokens,omitempty"`
	APIKey      string    `json:"api_key,omitempty"`
	LastRefresh string    `json:"last_refresh,omitempty"`
}

// TokenSet is the OAuth token triple stored in the auth file.
type TokenSet struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	AccountID    string `json:"account_id,omitempty"`
}

// defaultAuthFile is the well-known location shared with the login tooling.
func defaultAuthFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".codex/auth.json"
	}
	return filepath.Join(home, ".codex", "auth.json")
}

// loadRecord returns the cached auth record, reading the file on a cache
// miss. A missing file is reported as ErrNoCredentialFile so callers can
// give targeted remediation.
func (m *Manager) loadRecord() (*Record, error) {
	m.mu.Lock()
	cached := m.record
	m.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	data, err := os.ReadFile(m.authFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist; run your login flow first", ErrNoCredentialFile, m.authFile)
		}
		return nil, fmt.Errorf("auth: read credential file %s: %w", m.authFile, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("auth: parse credential file %s: %w", m.authFile, err)
	}

	m.mu.Lock()
	m.record = &rec
	m.mu.Unlock()
	return &rec, nil
}

// saveRecord writes the full record back to the auth file with pretty
// formatting and invalidates the in-memory cache so the next read reflects
// the write.
func (m *Manager) saveRecord(rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("auth: marshal credential file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.authFile), 0o700); err != nil {
		return fmt.Errorf("auth: create credential directory: %w", err)
	}
	if err := os.WriteFile(m.authFile, data, 0o600); err != nil {
		return fmt.Errorf("auth: write credential file %s: %w", m.authFile, err)
	}

	m.mu.Lock()
	m.record = nil
	m.mu.Unlock()
	return nil
}

// fileCredentials resolves a bearer token from the auth file, refreshing
// and persisting when the cached identity token is inside the expiry
// margin. Refreshes share the same single-flight discipline as session
// renewal.
func (m *Manager) fileCredentials(ctx context.Context) (token, accountID string, err error) {
	rec, err := m.loadRecord()
	if err != nil {
		return "", "", err
	}

	if rec.Tokens == nil {
		if rec.APIKey != "" {
			return rec.APIKey, "", nil
		}
		return "", "", fmt.Errorf("auth: credential file %s carries neither tokens nor an API key", m.authFile)
	}

	claimAccount, expiresAt, err := decodeIdentityToken(rec.Tokens.IDToken)
	if err != nil {
		return "", "", err
	}
	accountID = rec.Tokens.AccountID
	if accountID == "" {
		accountID = claimAccount
	}

	if m.usable(expiresAt) || rec.Tokens.RefreshToken == "" {
		return rec.Tokens.AccessToken, accountID, nil
	}

	v, err, _ := m.group.Do("file", func() (any, error) {
		// Re-read durable state: another process may have refreshed while
		// this call queued.
		rec, err := m.loadRecord()
		if err != nil {
			return nil, err
		}
		if rec.Tokens == nil {
			return nil, fmt.Errorf("auth: credential file %s lost its tokens during refresh", m.authFile)
		}
		if _, exp, err := decodeIdentityToken(rec.Tokens.IDToken); err == nil && m.usable(exp) {
			return rec, nil
		}

		next, err := m.exchange(ctx, rec.Tokens.RefreshToken)
		if err != nil {
			return nil, err
		}

		// Full read-modify-write: the whole record goes back, not a patch.
		updated := *rec
		updated.Tokens = &TokenSet{
			IDToken:      next.idToken,
			AccessToken:  next.accessToken,
			RefreshToken: next.refreshToken,
			AccountID:    next.accountID,
		}
		updated.LastRefresh = m.now().UTC().Format(time.RFC3339)
		if err := m.saveRecord(&updated); err != nil {
			return nil, err
		}
		return &updated, nil
	})
	if err != nil {
		return "", "", err
	}

	fresh := v.(*Record)
	accountID = fresh.Tokens.AccountID
	return fresh.Tokens.AccessToken, accountID, nil
}
