package oidc

// Package oidc provides the OIDC/OAuth2 AuthProvider used for marketplace logins.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/target/marketplace-gateway/internal/domain/auth"
	"github.com/target/marketplace-gateway/internal/ports"
)

// Provider implements the AuthProvider interface using OIDC/OAuth2.
type Provider struct {
	config     *oauth2.Config
	logoutURL  string
	httpClient *http.Client

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

var _ ports.AuthProvider = (*Provider)(nil)

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	DiscoveryURL string
	LogoutURL    string
	HTTPClient   *http.Client // Optional, defaults to a 30s client
}

// DiscoveryDocument represents the OIDC discovery document.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

// NewProvider creates a new OIDC provider. It fetches the discovery document once.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if config.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	p := &Provider{
		logoutURL:  config.LogoutURL,
		httpClient: httpClient,
	}

	ctx = gooidc.ClientContext(ctx, httpClient)
	issuer := strings.TrimSuffix(config.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	p.oidcProvider = op
	p.verifier = op.Verifier(&gooidc.Config{ClientID: config.ClientID})

	p.config = &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Scopes:       strings.Fields(config.Scope),
		Endpoint:     op.Endpoint(),
	}

	return p, nil
}

// LogoutURL is the IdP end-session URL, if configured.
func (p *Provider) LogoutURL() string { return p.logoutURL }

func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	// redirect_uri must match the registered RedirectURL exactly, so it is not overridden here.
	authURL := p.config.AuthCodeURL(state,
		gooidc.Nonce(nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
	)

	return authURL, state, nonce, nil
}

func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code == "" {
		return domainauth.Identity{}, errors.New("authorization code is required")
	}
	if in.State == "" {
		return domainauth.Identity{}, errors.New("state is required")
	}
	if in.Nonce == "" {
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = gooidc.ClientContext(ctx, p.httpClient)
	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	fields, err := p.extractFromIDToken(ctx, token, in.Nonce)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("extract id_token: %w", err)
	}

	if fields.userID == "" || fields.username == "" || len(fields.attributes) == 0 {
		if fillErr := p.fillFromUserInfo(ctx, token.AccessToken, &fields); fillErr != nil {
			return domainauth.Identity{}, fmt.Errorf("get user info: %w", fillErr)
		}
	}
	if fields.userID == "" {
		return domainauth.Identity{}, errors.New("identity has no subject")
	}

	expiresAt := time.Now().Add(time.Hour)
	if !token.Expiry.IsZero() {
		expiresAt = token.Expiry
	}

	return domainauth.Identity{
		UserID:     fields.userID,
		Username:   firstNonEmpty(fields.username, fields.userID),
		FirstName:  fields.givenName,
		LastName:   fields.familyName,
		Email:      fields.email,
		Groups:     fields.groups,
		Attributes: fields.attributes,
		ExpiresAt:  expiresAt,
	}, nil
}

// standardClaims is the subset of OIDC claims we map onto an Identity.
type standardClaims struct {
	Sub               string   `json:"sub"`
	PreferredUsername string   `json:"preferred_username"`
	Username          string   `json:"username"`
	GivenName         string   `json:"given_name"`
	FamilyName        string   `json:"family_name"`
	Email             string   `json:"email"`
	Groups            []string `json:"groups"`
	Nonce             string   `json:"nonce"`
}

type idFields struct {
	userID     string
	username   string
	email      string
	givenName  string
	familyName string
	groups     []string
	attributes map[string]string
}

// claimsDecoder is satisfied by both *gooidc.IDToken and *gooidc.UserInfo.
type claimsDecoder interface {
	Claims(v any) error
}

func decodeClaims(src claimsDecoder) (standardClaims, map[string]string, error) {
	var std standardClaims
	if err := src.Claims(&std); err != nil {
		return std, nil, err
	}
	var raw map[string]any
	if err := src.Claims(&raw); err != nil {
		return std, nil, err
	}
	return std, flattenAttributes(raw), nil
}

// flattenAttributes keeps the string-valued claims, e.g. custom:role.
func flattenAttributes(raw map[string]any) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

func (p *Provider) extractFromIDToken(ctx context.Context, tok *oauth2.Token, expectedNonce string) (idFields, error) {
	var f idFields
	if !p.hasOpenIDScope() {
		return f, nil
	}
	rawID, err := getIDTokenFromToken(tok)
	if err != nil {
		return f, err
	}
	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return f, fmt.Errorf("verify id_token: %w", err)
	}
	claims, attrs, err := decodeClaims(idTok)
	if err != nil {
		return f, fmt.Errorf("parse id_token claims: %w", err)
	}
	if expectedNonce != "" && claims.Nonce != expectedNonce {
		return f, errors.New("invalid nonce")
	}
	return mapClaims(claims, attrs), nil
}

func (p *Provider) fillFromUserInfo(ctx context.Context, accessToken string, f *idFields) error {
	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	if err != nil {
		return fmt.Errorf("fetch user info: %w", err)
	}
	claims, attrs, err := decodeClaims(ui)
	if err != nil {
		return fmt.Errorf("decode user info: %w", err)
	}
	fillFromClaims(f, mapClaims(claims, attrs))
	return nil
}

func mapClaims(c standardClaims, attrs map[string]string) idFields {
	delete(attrs, "nonce")
	return idFields{
		userID:     c.Sub,
		username:   firstNonEmpty(c.PreferredUsername, c.Username),
		email:      c.Email,
		givenName:  c.GivenName,
		familyName: c.FamilyName,
		groups:     c.Groups,
		attributes: attrs,
	}
}

// fillFromClaims fills empty fields of f from src. Attributes present in f win.
func fillFromClaims(f *idFields, src idFields) {
	if f.userID == "" {
		f.userID = src.userID
	}
	if f.username == "" {
		f.username = src.username
	}
	if f.email == "" {
		f.email = src.email
	}
	if f.givenName == "" {
		f.givenName = src.givenName
	}
	if f.familyName == "" {
		f.familyName = src.familyName
	}
	if len(f.groups) == 0 {
		f.groups = src.groups
	}
	if f.attributes == nil {
		f.attributes = make(map[string]string, len(src.attributes))
	}
	for k, v := range src.attributes {
		if _, ok := f.attributes[k]; !ok {
			f.attributes[k] = v
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// generateRandomString generates a cryptographically secure URL-safe random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:length], nil
}

func (p *Provider) hasOpenIDScope() bool {
	return slices.Contains(p.config.Scopes, gooidc.ScopeOpenID)
}

// getIDTokenFromToken extracts the id_token from oauth2.Token.
func getIDTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	s, ok := tok.Extra("id_token").(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}
