// Package oidc talks to an OpenID Connect provider: discovery, the
// authorization code flow, userinfo and token refresh.
package oidc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/markbates/goth/providers/openidConnect"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/aibuilder/aibuilder-backend/internal/auth/domain"
)

const discoveryTTL = time.Hour

var scopes = []string{"openid", "email", "profile", "offline_access"}

// Discovery is the subset of .well-known/openid-configuration we keep
// between refreshes.
type Discovery struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	EndSessionEndpoint    string `json:"end_session_endpoint"`
}

type Config struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
}

type Provider struct {
	cfg        Config
	httpClient *http.Client
	log        *zap.Logger
	now        func() time.Time

	mu        sync.RWMutex
	doc       *Discovery
	fetchedAt time.Time
}

func NewProvider(cfg Config, httpClient *http.Client, log *zap.Logger) *Provider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Provider{
		cfg:        cfg,
		httpClient: httpClient,
		log:        log,
		now:        time.Now,
	}
}

func (p *Provider) ClientID() string { return p.cfg.ClientID }

// Discover returns the provider metadata, fetching it at most once per hour.
func (p *Provider) Discover(ctx context.Context) (*Discovery, error) {
	p.mu.RLock()
	doc, fetchedAt := p.doc, p.fetchedAt
	p.mu.RUnlock()

	if doc != nil && p.now().Sub(fetchedAt) < discoveryTTL {
		return doc, nil
	}
	return p.Refresh(ctx)
}

// Refresh unconditionally refetches the provider metadata.
func (p *Provider) Refresh(ctx context.Context) (*Discovery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	endpoint := strings.TrimRight(p.cfg.IssuerURL, "/") + "/.well-known/openid-configuration"

	gp, err := openidConnect.New(p.cfg.ClientID, p.cfg.ClientSecret, "", endpoint, scopes...)
	if err != nil {
		return nil, fmt.Errorf("fetch discovery: %w", err)
	}
	conf := gp.OpenIDConfig
	if conf == nil || conf.AuthEndpoint == "" || conf.TokenEndpoint == "" {
		return nil, fmt.Errorf("discovery document for %s is missing endpoints", p.cfg.IssuerURL)
	}
	doc := Discovery{
		Issuer:                conf.Issuer,
		AuthorizationEndpoint: conf.AuthEndpoint,
		TokenEndpoint:         conf.TokenEndpoint,
		UserinfoEndpoint:      conf.UserInfoEndpoint,
		EndSessionEndpoint:    conf.EndSessionEndpoint,
	}

	p.mu.Lock()
	p.doc = &doc
	p.fetchedAt = p.now()
	p.mu.Unlock()

	p.log.Debug("oidc discovery refreshed", zap.String("issuer", doc.Issuer))
	return &doc, nil
}

// gothProvider builds a goth OpenID Connect provider from the cached
// metadata, so the callback URL can follow the request origin.
func (p *Provider) gothProvider(ctx context.Context, redirectURL string) (*openidConnect.Provider, error) {
	doc, err := p.Discover(ctx)
	if err != nil {
		return nil, err
	}
	gp, err := openidConnect.NewCustomisedURL(
		p.cfg.ClientID,
		p.cfg.ClientSecret,
		redirectURL,
		doc.AuthorizationEndpoint,
		doc.TokenEndpoint,
		doc.Issuer,
		doc.UserinfoEndpoint,
		doc.EndSessionEndpoint,
		scopes...,
	)
	if err != nil {
		return nil, fmt.Errorf("oidc provider: %w", err)
	}
	gp.HTTPClient = p.httpClient
	gp.UserIdClaims = []string{"sub"}
	gp.EmailClaims = []string{"email"}
	gp.NameClaims = []string{"name"}
	gp.FirstNameClaims = []string{"first_name", "given_name"}
	gp.LastNameClaims = []string{"last_name", "family_name"}
	gp.AvatarURLClaims = []string{"profile_image_url", "picture"}
	return gp, nil
}

func (p *Provider) oauthConfig(ctx context.Context, redirectURL string) (*oauth2.Config, error) {
	doc, err := p.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  doc.AuthorizationEndpoint,
			TokenURL: doc.TokenEndpoint,
		},
	}, nil
}

// AuthCodeURL builds the provider login URL carrying state.
func (p *Provider) AuthCodeURL(ctx context.Context, redirectURL, state string) (string, error) {
	conf, err := p.oauthConfig(ctx, redirectURL)
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "login consent")), nil
}

// Exchange trades the authorization code for tokens. The id_token rides in
// the token's extra fields for UserInfo.
func (p *Provider) Exchange(ctx context.Context, redirectURL, code string) (*oauth2.Token, error) {
	gp, err := p.gothProvider(ctx, redirectURL)
	if err != nil {
		return nil, err
	}
	sess := &openidConnect.Session{}
	if err := authorize(sess, gp, code); err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	tok := &oauth2.Token{
		AccessToken:  sess.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: sess.RefreshToken,
		Expiry:       sess.ExpiresAt,
	}
	return tok.WithExtra(map[string]any{"id_token": sess.IDToken}), nil
}

// authorize wraps goth's Authorize, which panics when the token response
// carries no id_token.
func authorize(sess *openidConnect.Session, gp *openidConnect.Provider, code string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("token response without id_token: %v", r)
		}
	}()
	_, err = sess.Authorize(gp, url.Values{"code": {code}})
	return err
}

// RefreshToken trades a refresh token for a new access token.
func (p *Provider) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	gp, err := p.gothProvider(ctx, "")
	if err != nil {
		return nil, err
	}
	tok, err := gp.RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return tok, nil
}

// UserInfo validates the id_token claims and merges the userinfo response.
func (p *Provider) UserInfo(ctx context.Context, tok *oauth2.Token) (*domain.Claims, error) {
	idToken, _ := tok.Extra("id_token").(string)
	if tok.AccessToken == "" || idToken == "" {
		return nil, fmt.Errorf("token has no access token or id_token")
	}
	gp, err := p.gothProvider(ctx, "")
	if err != nil {
		return nil, err
	}

	user, err := gp.FetchUser(&openidConnect.Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
		IDToken:      idToken,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	if user.UserID == "" {
		return nil, fmt.Errorf("userinfo response has no subject")
	}

	claims := &domain.Claims{
		Sub:             user.UserID,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		ProfileImageURL: user.AvatarURL,
	}
	claims.SplitName(user.Name)
	return claims, nil
}

// EndSessionURL is where the browser goes to log out of the provider.
// Without an end_session_endpoint it returns postLogoutRedirect unchanged.
func (p *Provider) EndSessionURL(ctx context.Context, postLogoutRedirect string) (string, error) {
	doc, err := p.Discover(ctx)
	if err != nil {
		return "", err
	}
	if doc.EndSessionEndpoint == "" {
		return postLogoutRedirect, nil
	}

	u, err := url.Parse(doc.EndSessionEndpoint)
	if err != nil {
		return "", fmt.Errorf("parse end_session_endpoint: %w", err)
	}
	q := u.Query()
	q.Set("client_id", p.cfg.ClientID)
	q.Set("post_logout_redirect_uri", postLogoutRedirect)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
