package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/planhub/planhub/internal/config"
	"github.com/planhub/planhub/internal/event_bus"
	"github.com/planhub/planhub/pkg/user"
	log "github.com/sirupsen/logrus"
)

const tokenHeader = "x-auth-token"

// HTTPProvider implements Provider against the REST API of the external auth
// service. The session token is cached in a TokenStore and sent on every
// authenticated request.
type HTTPProvider struct {
	baseUrl string
	client  *http.Client
	tokens  *TokenStore
	bus     *event_bus.EventBus
}

func NewHTTPProvider(cfg config.Auth, tokens *TokenStore, bus *event_bus.EventBus) *HTTPProvider {
	return &HTTPProvider{
		baseUrl: cfg.ServiceUrl,
		client:  &http.Client{Timeout: 10 * time.Second},
		tokens:  tokens,
		bus:     bus,
	}
}

type sessionResponse struct {
	Token string `json:"token"`
	User  struct {
		Id       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	} `json:"user"`
}

func (r sessionResponse) toSession() Session {
	return Session{
		Token: r.Token,
		User: user.User{
			Id:       r.User.Id,
			Username: r.User.Username,
			Email:    r.User.Email,
			Role:     user.Role(r.User.Role),
		},
	}
}

func (p *HTTPProvider) Register(ctx context.Context, username, email, password string, role user.Role) (Session, error) {
	payload := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
		"role":     string(role),
	}
	session, err := p.postCredentials(ctx, "/auth/register", payload)
	if err != nil {
		return Session{}, err
	}
	p.startSession(ctx, session)
	return session, nil
}

func (p *HTTPProvider) Login(ctx context.Context, email, password string) (Session, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}
	session, err := p.postCredentials(ctx, "/auth/login", payload)
	if err != nil {
		return Session{}, err
	}
	p.startSession(ctx, session)
	return session, nil
}

// Logout drops the cached token. The auth service issues stateless JWTs, so
// there is nothing to revoke server-side.
func (p *HTTPProvider) Logout(ctx context.Context) error {
	if err := p.tokens.Clear(); err != nil {
		return err
	}
	p.publishState(ctx, event_bus.AuthState{LoggedIn: false})
	return nil
}

func (p *HTTPProvider) CurrentUser(ctx context.Context) (user.User, error) {
	token, err := p.tokens.Token()
	if err != nil {
		return user.User{}, err
	}
	if token == "" {
		return user.User{}, ErrNotLoggedIn
	}

	req, err := http.NewRequestWithContext(ctx, "GET", p.baseUrl+"/auth/user", nil)
	if err != nil {
		log.Errorf("Failed to create request: %v", err)
		return user.User{}, err
	}
	req.Header.Set(tokenHeader, token)

	resp, err := p.client.Do(req)
	if err != nil {
		log.Errorf("Failed to execute request: %v", err)
		return user.User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// The cached token expired or was invalidated; drop it so the next
		// call fails fast.
		log.Debug("cached session token rejected, clearing it")
		if clearErr := p.tokens.Clear(); clearErr != nil {
			log.Errorf("failed to clear rejected session token: %v", clearErr)
		}
		return user.User{}, ErrNotLoggedIn
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("auth service returned non-OK status: %d", resp.StatusCode)
		log.Error(err)
		return user.User{}, err
	}

	var response struct {
		Id       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		log.Errorf("Failed to decode response: %v", err)
		return user.User{}, err
	}

	return user.User{
		Id:       response.Id,
		Username: response.Username,
		Email:    response.Email,
		Role:     user.Role(response.Role),
	}, nil
}

func (p *HTTPProvider) postCredentials(ctx context.Context, path string, payload map[string]string) (Session, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Session{}, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseUrl+path, bytes.NewReader(body))
	if err != nil {
		log.Errorf("Failed to create request: %v", err)
		return Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		log.Errorf("Failed to execute request: %v", err)
		return Session{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest ||
		resp.StatusCode == http.StatusConflict {
		return Session{}, ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		err := fmt.Errorf("auth service returned non-OK status: %d", resp.StatusCode)
		log.Error(err)
		return Session{}, err
	}

	var response sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		log.Errorf("Failed to decode response: %v", err)
		return Session{}, err
	}
	return response.toSession(), nil
}

func (p *HTTPProvider) startSession(ctx context.Context, session Session) {
	if err := p.tokens.Store(session.Token); err != nil {
		// The session is still valid for this process lifetime; it just will
		// not survive a restart.
		log.Errorf("failed to cache session token: %v", err)
	}
	p.publishState(ctx, event_bus.AuthState{
		LoggedIn: true,
		UserId:   session.User.Id,
		Username: session.User.Username,
		Role:     string(session.User.Role),
	})
}

func (p *HTTPProvider) publishState(ctx context.Context, state event_bus.AuthState) {
	if p.bus == nil {
		return
	}
	if err := p.bus.Publish(event_bus.NewEvent(ctx, event_bus.AuthStateChanged, state)); err != nil {
		log.Errorf("failed to publish auth state change: %v", err)
	}
}
