// Package partners issues credential bundles that let a partner application
// call the identity network API, and keeps the server side record of them.
package partners

import (
	"crypto/rand"
	"encoding/binary"
	"strings"
	"time"

	"github.com/martinlindhe/base36"
	"golang.org/x/oauth2/clientcredentials"

	autherrors "github.com/jrsteele09/go-identity-dashboard/internal/errors"
)

const (
	DefaultBaseURL = "https://api.pixelpirates.dev/v1"
	TokenPath      = "/oauth2/token"

	prefixClient  = "client"
	prefixSecret  = "secret"
	prefixWebhook = "webhook"

	segmentLength = 6

	msgMissingApplication = "Please provide an application name before authenticating."
)

// randomSpace is 36^6, the number of distinct random segments.
const randomSpace = 2176782336

// Bundle is what an admin hands to a partner. It is shown once and never
// written to the session store.
type Bundle struct {
	Application   string `json:"application"`
	ClientID      string `json:"clientId"`
	ClientSecret  string `json:"clientSecret"`
	WebhookSecret string `json:"webhookSecret"`
	BaseURL       string `json:"baseUrl"`
}

// Generator creates bundles. The zero value is not usable; use NewGenerator.
type Generator struct {
	baseURL string
	nowTime func() time.Time
}

// GeneratorOption defines a function type to modify the Generator instance.
type GeneratorOption func(*Generator)

// WithBaseURL sets the API base URL written into each bundle
func WithBaseURL(baseURL string) GeneratorOption {
	return func(g *Generator) {
		if baseURL != "" {
			g.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.nowTime = nowFunc
	}
}

func NewGenerator(options ...GeneratorOption) *Generator {
	g := &Generator{
		baseURL: DefaultBaseURL,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Generate is shorthand for NewGenerator(WithBaseURL(baseURL)).Generate.
func Generate(application, baseURL string) (*Bundle, error) {
	return NewGenerator(WithBaseURL(baseURL)).Generate(application)
}

// Generate mints a new bundle for application. Every value has the form
// <prefix>_<6 random chars><last 6 chars of the clock>, all base36.
func (g *Generator) Generate(application string) (*Bundle, error) {
	application = strings.TrimSpace(application)
	if application == "" {
		return nil, autherrors.Validation(msgMissingApplication)
	}

	clientID, err := g.value(prefixClient)
	if err != nil {
		return nil, err
	}
	secret, err := g.value(prefixSecret)
	if err != nil {
		return nil, err
	}
	webhook, err := g.value(prefixWebhook)
	if err != nil {
		return nil, err
	}

	return &Bundle{
		Application:   application,
		ClientID:      clientID,
		ClientSecret:  secret,
		WebhookSecret: webhook,
		BaseURL:       g.baseURL,
	}, nil
}

// ClientCredentials returns the OAuth2 client credentials configuration for
// exchanging the bundle for an access token.
func (b *Bundle) ClientCredentials(scopes ...string) *clientcredentials.Config {
	return &clientcredentials.Config{
		ClientID:     b.ClientID,
		ClientSecret: b.ClientSecret,
		TokenURL:     strings.TrimRight(b.BaseURL, "/") + TokenPath,
		Scopes:       scopes,
	}
}

func (g *Generator) value(prefix string) (string, error) {
	random, err := randomSegment()
	if err != nil {
		return "", autherrors.Wrapf(err, "[Generator.value] generating %s", prefix)
	}
	return prefix + "_" + random + clockSegment(g.nowTime()), nil
}

func randomSegment() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint64(buf[:]) % randomSpace
	return pad(strings.ToLower(base36.Encode(n))), nil
}

func clockSegment(now time.Time) string {
	s := strings.ToLower(base36.Encode(uint64(now.UnixMilli())))
	if len(s) > segmentLength {
		s = s[len(s)-segmentLength:]
	}
	return pad(s)
}

func pad(s string) string {
	if len(s) >= segmentLength {
		return s
	}
	return strings.Repeat("0", segmentLength-len(s)) + s
}
