package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ExpiryMargin is the safety margin applied to token expiry: a token closer
// than this to expiring is refreshed proactively, and the same margin
// decides whether a cached token is still usable.
const ExpiryMargin = time.Hour

const (
	// DefaultTokenURL is the OAuth token endpoint used for refresh exchanges.
	DefaultTokenURL = "https://auth.openai.com/oauth/token"

	// EnvAPIKey is the environment variable read in environment-key mode.
	EnvAPIKey = "ANFRAGE_API_KEY"

	// AccountHeader carries the tenant/account identifier on every request.
	AccountHeader = "chatgpt-account-id"

	oauthClientID = "app_EMoamEEZ73f0CkXaXp7hrann"
	oauthScope    = "openid profile email"
)

// Sentinel errors distinguishing actionable failure modes.
var (
	// ErrNoCredentialFile means the auth file does not exist at all, as
	// opposed to being unreadable or malformed.
	ErrNoCredentialFile = errors.New("auth: credential file not found")

	// ErrMissingAPIKey means the environment variable is unset in
	// environment-key mode.
	ErrMissingAPIKey = errors.New("auth: API key environment variable not set")
)

// Mode identifies the resolved credential source.
type Mode string

const (
	ModeAPIKey       Mode = "api-key"
	ModeRefreshToken Mode = "refresh-token"
	ModeEnv          Mode = "env"
	ModeFile         Mode = "file"
)

// Config selects the credential source. Precedence is strict: APIKey wins
// over RefreshToken, which wins over EnvKey, which wins over the auth file.
// Sources never combine.
type Config struct {
	// APIKey enables stateless explicit-key mode.
	APIKey string

	// RefreshToken seeds an in-memory OAuth session with proactive renewal.
	RefreshToken string

	// EnvKey enables reading the key from the EnvAPIKey variable.
	EnvKey bool

	// AuthFile overrides the default auth file path.
	AuthFile string

	// TokenURL overrides the OAuth token endpoint (tests).
	TokenURL string

	// HTTPClient is used for token exchanges. Defaults to a short-timeout client.
	HTTPClient *http.Client
}

// Manager resolves credentials and assembles request headers. Safe for use
// by concurrent requests; all token refreshes coalesce onto one in-flight
// exchange.
type Manager struct {
	mode       Mode
	apiKey     string
	authFile   string
	tokenURL   string
	httpClient *http.Client
	now        func() time.Time

	mu      sync.Mutex
	session *session
	record  *Record
	group   singleflight.Group
}

// session is the in-memory state of refresh-token mode. Never exposed
// outside the manager. A zero expiresAt means the expiry is unknown.
type session struct {
	idToken      string
	accessToken  string
	refreshToken string
	accountID    string
	expiresAt    time.Time
}

// NewManager creates a manager with the credential mode resolved once by
// precedence.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		tokenURL:   cfg.TokenURL,
		authFile:   cfg.AuthFile,
		httpClient: cfg.HTTPClient,
		now:        time.Now,
	}
	if m.tokenURL == "" {
		m.tokenURL = DefaultTokenURL
	}
	if m.httpClient == nil {
		m.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if m.authFile == "" {
		m.authFile = defaultAuthFile()
	}

	switch {
	case cfg.APIKey != "":
		m.mode = ModeAPIKey
		m.apiKey = cfg.APIKey
	case cfg.RefreshToken != "":
		m.mode = ModeRefreshToken
		m.session = &session{refreshToken: cfg.RefreshToken}
	case cfg.EnvKey:
		m.mode = ModeEnv
	default:
		m.mode = ModeFile
	}
	return m
}

// Mode returns the credential source resolved at construction.
func (m *Manager) Mode() Mode {
	return m.mode
}

// Invalidate drops the in-memory session and the cached auth record. The
// next credential access re-reads durable state.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		m.session = &session{refreshToken: m.session.refreshToken}
	}
	m.record = nil
}

// Headers assembles the outbound header set: bearer authorization, account
// identifier when known, and content negotiation for the streaming
// protocol. Custom headers are applied last so caller overrides win.
func (m *Manager) Headers(ctx context.Context, custom map[string]string) (map[string]string, error) {
	token, accountID, err := m.credentials(ctx)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"Authorization": "Bearer " + token,
		"Content-Type":  "application/json",
		"Accept":        "text/event-stream",
	}
	if accountID != "" {
		headers[AccountHeader] = accountID
	}
	for key, value := range custom {
		headers[key] = value
	}
	return headers, nil
}

// credentials resolves the bearer token and account id for the active mode.
func (m *Manager) credentials(ctx context.Context) (token, accountID string, err error) {
	switch m.mode {
	case ModeAPIKey:
		return m.apiKey, "", nil

	case ModeRefreshToken:
		s, err := m.ensureSession(ctx)
		if err != nil {
			return "", "", err
		}
		return s.accessToken, s.accountID, nil

	case ModeEnv:
		key := os.Getenv(EnvAPIKey)
		if key == "" {
			return "", "", fmt.Errorf("%w: export %s or configure another credential source", ErrMissingAPIKey, EnvAPIKey)
		}
		return key, "", nil

	default:
		return m.fileCredentials(ctx)
	}
}

// usable reports whether a token expiring at the given instant can still be
// sent. An unknown expiry counts as usable.
func (m *Manager) usable(expiresAt time.Time) bool {
	return expiresAt.IsZero() || expiresAt.Sub(m.now()) > ExpiryMargin
}
