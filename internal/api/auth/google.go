package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"garden-ai/internal/domain/users"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleIssuer    = "https://accounts.google.com"
	stateCookieName = "oauth_state"
)

var (
	errInvalidIDToken = errors.New("invalid id_token")
	// errSubjectMismatch: the email belongs to an account already bound
	// to a different Google subject.
	errSubjectMismatch = errors.New("email is linked to another google account")
)

// CodeExchanger is the part of *oauth2.Config the callback needs.
type CodeExchanger interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// IDTokenVerifier checks a raw ID token and returns its claims.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*GoogleClaims, error)
}

type GoogleClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
}

func GoogleOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

type oidcVerifier struct {
	v *oidc.IDTokenVerifier
}

// NewGoogleVerifier fetches Google's discovery document once and verifies
// ID token signatures against its key set.
func NewGoogleVerifier(ctx context.Context, clientID string) (IDTokenVerifier, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("init google oidc provider: %w", err)
	}
	return &oidcVerifier{v: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

func (o *oidcVerifier) Verify(ctx context.Context, raw string) (*GoogleClaims, error) {
	tok, err := o.v.Verify(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidIDToken, err)
	}
	var claims GoogleClaims
	if err := tok.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: decode claims: %v", errInvalidIDToken, err)
	}
	return &claims, nil
}

type GoogleOptions struct {
	FrontendRedirect string
	SecureCookie     bool
	IsAdminEmail     func(email string) bool
}

type GoogleHandler struct {
	oauth    CodeExchanger
	verifier IDTokenVerifier
	store    users.Store
	tokens   *TokenIssuer
	opts     GoogleOptions
	log      zerolog.Logger
}

func NewGoogleHandler(oauth CodeExchanger, verifier IDTokenVerifier, store users.Store, tokens *TokenIssuer, opts GoogleOptions, log zerolog.Logger) *GoogleHandler {
	if opts.IsAdminEmail == nil {
		opts.IsAdminEmail = func(string) bool { return false }
	}
	return &GoogleHandler{
		oauth:    oauth,
		verifier: verifier,
		store:    store,
		tokens:   tokens,
		opts:     opts,
		log:      log.With().Str("component", "auth").Logger(),
	}
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GET /auth/google
func (h *GoogleHandler) GoogleStart(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate state"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, state, 300, "/", "", h.opts.SecureCookie, true)
	c.Redirect(http.StatusFound, h.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline))
}

// GET /auth/google/callback
func (h *GoogleHandler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code/state"})
		return
	}

	cookieState, err := c.Cookie(stateCookieName)
	if err != nil || cookieState != state {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}
	c.SetCookie(stateCookieName, "", -1, "/", "", h.opts.SecureCookie, true)

	ctx := c.Request.Context()
	tok, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		h.log.Warn().Err(err).Msg("google code exchange failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "failed to exchange code"})
		return
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing id_token"})
		return
	}

	claims, err := h.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		h.log.Warn().Err(err).Msg("google id token rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid id_token"})
		return
	}
	if claims.Sub == "" || claims.Email == "" || !claims.EmailVerified {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "google account has no verified email"})
		return
	}

	user, err := h.findOrCreate(ctx, claims)
	if errors.Is(err, errSubjectMismatch) {
		h.log.Warn().Str("google_sub", claims.Sub).Msg("google sign-in refused, email bound to another subject")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "this email is linked to a different Google account"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("google_sub", claims.Sub).Msg("google sign-in failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	tokenString, err := h.tokens.Issue(*user)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("issue token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create token"})
		return
	}

	if h.opts.FrontendRedirect == "" {
		c.JSON(http.StatusOK, gin.H{"token": tokenString})
		return
	}
	c.Redirect(http.StatusFound, h.opts.FrontendRedirect+"?token="+url.QueryEscape(tokenString))
}

func (h *GoogleHandler) findOrCreate(ctx context.Context, gc *GoogleClaims) (*users.User, error) {
	user, err := h.store.FindByGoogleSub(ctx, gc.Sub)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, users.ErrNotFound) {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(gc.Email))
	user, err = h.store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if user.GoogleSub != nil && *user.GoogleSub != gc.Sub {
			return nil, errSubjectMismatch
		}
		if user.GoogleSub == nil {
			if err := h.store.LinkGoogle(ctx, user.ID, gc.Sub); err != nil {
				return nil, fmt.Errorf("link google account: %w", err)
			}
			sub := gc.Sub
			user.GoogleSub = &sub
		}
		return user, nil
	case !errors.Is(err, users.ErrNotFound):
		return nil, err
	}

	sub := gc.Sub
	role := users.RoleUser
	if h.opts.IsAdminEmail(email) {
		role = users.RoleAdmin
	}
	user = &users.User{
		ID:                 uuid.NewString(),
		Name:               firstNonEmpty(gc.GivenName, gc.Name),
		Email:              email,
		GoogleSub:          &sub,
		Role:               role,
		SubscriptionStatus: users.StatusNone,
	}
	if err := h.store.Create(ctx, user); err != nil {
		return nil, err
	}
	h.log.Info().Str("user_id", user.ID).Str("role", role).Msg("user created")
	return user, nil
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
