package issuer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	autherrors "github.com/jrsteele09/go-identity-dashboard/internal/errors"
	"github.com/jrsteele09/go-identity-dashboard/issuer"
	"github.com/jrsteele09/go-identity-dashboard/users"
)

var fixedNow = time.UnixMilli(1700000000123)

func newMock() *issuer.Mock {
	return issuer.NewMock(
		issuer.WithDelay(0),
		issuer.WithRegisterDelay(0),
		issuer.WithNowTime(func() time.Time { return fixedNow }),
	)
}

func TestMock_LoginProfiles(t *testing.T) {
	tests := []struct {
		name           string
		email          string
		role           users.RoleType
		wantName       string
		wantIdentifier string
	}{
		{name: "admin", email: "a@b.com", role: users.RoleAdmin, wantName: "Adminis Astra", wantIdentifier: "a@b.com"},
		{name: "other admin", email: "ops@example.org", role: users.RoleAdmin, wantName: "Adminis Astra", wantIdentifier: "ops@example.org"},
		{name: "user", email: "a@b.com", role: users.RoleUser, wantName: "Craterus Orion", wantIdentifier: "DID:did:ppn:3fa::9z9"},
		{name: "user identifier ignores email", email: "z@q.io", role: users.RoleUser, wantName: "Craterus Orion", wantIdentifier: "DID:did:ppn:3fa::9z9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := newMock().Login(context.Background(), issuer.LoginRequest{Email: tt.email, Password: "secret1", Role: tt.role})
			require.NoError(t, err)
			require.Equal(t, "mock_token_1700000000123", resp.Token)
			require.Equal(t, users.Profile{
				ID:         "1",
				Email:      tt.email,
				Name:       tt.wantName,
				Role:       tt.role,
				Identifier: tt.wantIdentifier,
			}, resp.User)
		})
	}
}

func TestMock_LoginRejects(t *testing.T) {
	tests := []struct {
		name string
		req  issuer.LoginRequest
	}{
		{name: "short password", req: issuer.LoginRequest{Email: "x@y.com", Password: "123", Role: users.RoleUser}},
		{name: "five characters", req: issuer.LoginRequest{Email: "x@y.com", Password: "12345", Role: users.RoleUser}},
		{name: "empty email", req: issuer.LoginRequest{Email: "", Password: "secret1", Role: users.RoleAdmin}},
		{name: "unknown role", req: issuer.LoginRequest{Email: "x@y.com", Password: "secret1", Role: "root"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newMock().Login(context.Background(), tt.req)
			require.Error(t, err)
			require.EqualError(t, err, "Invalid credentials")
			require.Equal(t, autherrors.KindAuth, autherrors.KindOf(err))
			require.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
		})
	}
}

func TestMock_TokensFollowTheClock(t *testing.T) {
	now := fixedNow
	m := issuer.NewMock(issuer.WithDelay(0), issuer.WithNowTime(func() time.Time {
		now = now.Add(time.Millisecond)
		return now
	}))

	first, err := m.Login(context.Background(), issuer.LoginRequest{Email: "a@b.com", Password: "secret1", Role: users.RoleUser})
	require.NoError(t, err)
	second, err := m.Login(context.Background(), issuer.LoginRequest{Email: "a@b.com", Password: "secret1", Role: users.RoleUser})
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)
}

func TestMock_LoginHonoursDelayAndCancellation(t *testing.T) {
	m := issuer.NewMock(issuer.WithDelay(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.Login(ctx, issuer.LoginRequest{Email: "a@b.com", Password: "secret1", Role: users.RoleUser})
	require.Error(t, err)
	require.Equal(t, autherrors.KindTransport, autherrors.KindOf(err))
	require.ErrorIs(t, err, context.DeadlineExceeded)

	start := time.Now()
	m = issuer.NewMock(issuer.WithDelay(30 * time.Millisecond))
	_, err = m.Login(context.Background(), issuer.LoginRequest{Email: "a@b.com", Password: "secret1", Role: users.RoleUser})
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestMock_Register(t *testing.T) {
	resp, err := newMock().Register(context.Background(), issuer.RegisterRequest{
		Email: "new@b.com", Password: "secret1", Name: "Nova", Role: users.RoleUser,
	})
	require.NoError(t, err)
	require.Equal(t, "mock_token_1700000000123", resp.Token)
	require.Equal(t, users.Profile{
		ID:         "1700000000123",
		Email:      "new@b.com",
		Name:       "Nova",
		Role:       users.RoleUser,
		Identifier: "DID:did:ppn:1700000000123",
	}, resp.User)

	resp, err = newMock().Register(context.Background(), issuer.RegisterRequest{
		Email: "root@b.com", Password: "secret1", Name: "Root", Role: users.RoleAdmin,
	})
	require.NoError(t, err)
	require.Equal(t, "root@b.com", resp.User.Identifier)

	_, err = newMock().Register(context.Background(), issuer.RegisterRequest{Email: "new@b.com", Password: "secret1", Role: users.RoleUser})
	require.EqualError(t, err, "Invalid registration data")
	require.Equal(t, autherrors.KindAuth, autherrors.KindOf(err))
}

func TestRemote_Login(t *testing.T) {
	var got issuer.LoginRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"jwt-1","user":{"id":"u1","email":"a@b.com","name":"A","role":"admin","identifier":"a@b.com"}}`))
	}))
	defer srv.Close()

	r := issuer.NewRemote(srv.URL + "/api/")
	resp, err := r.Login(context.Background(), issuer.LoginRequest{Email: "a@b.com", Password: "secret1", Role: users.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, issuer.LoginRequest{Email: "a@b.com", Password: "secret1", Role: users.RoleAdmin}, got)
	require.Equal(t, "jwt-1", resp.Token)
	require.Equal(t, users.RoleAdmin, resp.User.Role)
	require.Equal(t, "a@b.com", resp.User.Identifier)
}

func TestRemote_Register(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/register", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Nova", body["name"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"jwt-2","user":{"id":"u2","email":"n@b.com","name":"Nova","role":"user"}}`))
	}))
	defer srv.Close()

	resp, err := issuer.NewRemote(srv.URL).Register(context.Background(), issuer.RegisterRequest{
		Email: "n@b.com", Password: "secret1", Name: "Nova", Role: users.RoleUser,
	})
	require.NoError(t, err)
	require.Equal(t, "jwt-2", resp.Token)
	require.Empty(t, resp.User.Identifier)
}

func TestRemote_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		wantKind   autherrors.Kind
		wantStatus int
	}{
		{name: "message from payload", status: http.StatusUnauthorized, body: `{"message":"Invalid credentials"}`, wantMsg: "Invalid credentials", wantKind: autherrors.KindAuth, wantStatus: 401},
		{name: "status text fallback", status: http.StatusForbidden, body: `{}`, wantMsg: "Forbidden", wantKind: autherrors.KindAuth, wantStatus: 403},
		{name: "non json error body", status: http.StatusBadGateway, body: `upstream down`, wantMsg: "Bad Gateway", wantKind: autherrors.KindAuth, wantStatus: 502},
		{name: "unparseable success", status: http.StatusOK, body: `<html>`, wantMsg: "Failed to parse response", wantKind: autherrors.KindTransport, wantStatus: 200},
		{name: "success without token", status: http.StatusOK, body: `{"user":{}}`, wantMsg: "Failed to parse response", wantKind: autherrors.KindTransport, wantStatus: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := issuer.NewRemote(srv.URL).Login(context.Background(), issuer.LoginRequest{Email: "a@b.com", Password: "secret1", Role: users.RoleUser})
			require.EqualError(t, err, tt.wantMsg)

			var e *autherrors.Error
			require.ErrorAs(t, err, &e)
			require.Equal(t, tt.wantKind, e.Kind)
			require.Equal(t, tt.wantStatus, e.Status)
		})
	}
}

func TestRemote_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := issuer.NewRemote(srv.URL, issuer.WithTimeout(20*time.Millisecond)).
		Login(context.Background(), issuer.LoginRequest{Email: "a@b.com", Password: "secret1", Role: users.RoleUser})
	require.EqualError(t, err, "Request timeout")

	var e *autherrors.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, autherrors.KindTransport, e.Kind)
	require.Equal(t, http.StatusRequestTimeout, e.Status)
}

func TestRemote_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := issuer.NewRemote(url).Login(context.Background(), issuer.LoginRequest{Email: "a@b.com", Password: "secret1", Role: users.RoleUser})
	var e *autherrors.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, autherrors.KindTransport, e.Kind)
	require.Zero(t, e.Status)
	require.Contains(t, e.Message, url)
}

type staticAPIConfig struct{ mock bool }

func (c staticAPIConfig) GetAPIBaseURL() string        { return "http://localhost:1" }
func (c staticAPIConfig) GetAPITimeout() time.Duration { return time.Second }
func (c staticAPIConfig) GetEnableMockAPI() bool       { return c.mock }

func TestNew_SelectsMode(t *testing.T) {
	require.IsType(t, &issuer.Mock{}, issuer.New(staticAPIConfig{mock: true}))
	require.IsType(t, &issuer.Remote{}, issuer.New(staticAPIConfig{mock: false}))
}
