package partners_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	autherrors "github.com/jrsteele09/go-identity-dashboard/internal/errors"
	"github.com/jrsteele09/go-identity-dashboard/partners"
	fakepartnerrepo "github.com/jrsteele09/go-identity-dashboard/partners/fakerepo"
)

var fixedNow = time.UnixMilli(1700000000000)

func TestGenerate(t *testing.T) {
	g := partners.NewGenerator(partners.WithNowTime(func() time.Time { return fixedNow }))

	b, err := g.Generate("  Orbit Wallet  ")
	require.NoError(t, err)
	require.Equal(t, "Orbit Wallet", b.Application)
	require.Equal(t, partners.DefaultBaseURL, b.BaseURL)

	// 1700000000000 in base36 is loyw3v28, so the clock segment is yw3v28
	for prefix, value := range map[string]string{"client": b.ClientID, "secret": b.ClientSecret, "webhook": b.WebhookSecret} {
		require.Regexp(t, regexp.MustCompile(`^`+prefix+`_[0-9a-z]{6}yw3v28$`), value)
	}
	require.NotEqual(t, b.ClientSecret[len("secret_"):], b.WebhookSecret[len("webhook_"):])

	other, err := g.Generate("Orbit Wallet")
	require.NoError(t, err)
	require.NotEqual(t, b.ClientID, other.ClientID)
}

func TestGenerate_RequiresApplication(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := partners.Generate(name, "")
		require.EqualError(t, err, "Please provide an application name before authenticating.")
		require.Equal(t, autherrors.KindValidation, autherrors.KindOf(err))
	}
}

func TestGenerate_BaseURL(t *testing.T) {
	b, err := partners.Generate("App", "http://localhost:3000/api/")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:3000/api", b.BaseURL)

	out, err := json.Marshal(b)
	require.NoError(t, err)
	for _, key := range []string{`"application"`, `"clientId"`, `"clientSecret"`, `"webhookSecret"`, `"baseUrl"`} {
		require.Contains(t, string(out), key)
	}
}

func TestBundle_ClientCredentials(t *testing.T) {
	var gotID, gotSecret, gotScope string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, partners.TokenPath, r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotID, gotSecret, _ = r.BasicAuth()
		gotScope = r.PostForm.Get("scope")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	b, err := partners.Generate("App", srv.URL)
	require.NoError(t, err)

	cfg := b.ClientCredentials("did:read", "audit:read")
	require.Equal(t, srv.URL+"/oauth2/token", cfg.TokenURL)

	tok, err := cfg.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "at-1", tok.AccessToken)
	require.Equal(t, b.ClientID, gotID)
	require.Equal(t, b.ClientSecret, gotSecret)
	require.Equal(t, "did:read audit:read", gotScope)
}

func TestPartner(t *testing.T) {
	b, err := partners.Generate("App", "")
	require.NoError(t, err)

	p, err := partners.NewPartner(b, "admin-1", []string{"did:read"}, fixedNow)
	require.NoError(t, err)
	require.Equal(t, b.ClientID, p.ClientID)
	require.NotContains(t, p.SecretHash, b.ClientSecret)
	require.True(t, p.Authenticate(b.ClientSecret))
	require.False(t, p.Authenticate(b.WebhookSecret))
	require.False(t, p.Authenticate(""))

	require.NoError(t, p.ValidateScopes(""))
	require.NoError(t, p.ValidateScopes("did:read"))
	require.ErrorIs(t, p.ValidateScopes("did:read audit:write"), partners.ErrInvalidScope)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	require.False(t, strings.Contains(string(out), p.SecretHash))
}

func TestFakePartnerRepo(t *testing.T) {
	repo := fakepartnerrepo.NewFakePartnerRepo()

	_, err := repo.Get("client_missing")
	require.ErrorIs(t, err, autherrors.ErrNotFound)
	require.Error(t, repo.Upsert(&partners.Partner{}))

	for _, id := range []string{"client_c", "client_a", "client_b"} {
		require.NoError(t, repo.Upsert(&partners.Partner{ClientID: id, Application: id}))
	}

	p, err := repo.Get("client_b")
	require.NoError(t, err)
	require.Equal(t, "client_b", p.Application)

	page, err := repo.List(0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "client_a", page[0].ClientID)
	require.Equal(t, "client_b", page[1].ClientID)

	page, err = repo.List(2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)

	page, err = repo.List(5, 2)
	require.NoError(t, err)
	require.Empty(t, page)
}
