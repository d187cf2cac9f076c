package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/xid"
	"github.com/study-and-research/QnA/internal/auth"
	"github.com/study-and-research/QnA/internal/service"
)

// AuthHandler manages sign-up, sign-in, and the OAuth login flow for
// every configured provider.
type AuthHandler struct {
	providers map[string]*auth.Provider
	identity  *service.IdentityService
	logger    *slog.Logger
}

func NewAuthHandler(providers []*auth.Provider, identity *service.IdentityService, logger *slog.Logger) *AuthHandler {
	byName := make(map[string]*auth.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &AuthHandler{
		providers: byName,
		identity:  identity,
		logger:    logger,
	}
}

// HandleSignUp registers a local email+password account.
//
// HTTP: POST /auth/signup {"email","name","password"}
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.identity.SignUp(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusCreated, result.User)
}

// HandleSignIn authenticates an email+password pair.
//
// HTTP: POST /auth/signin {"email","password"}
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, result.User)
}

// HandleOAuthLogin redirects the browser to the provider's
// authorization page.
//
// HTTP: GET /auth/{provider}/login
//
// A random state value goes into a short-lived cookie; the callback
// verifies it to prove the flow started here and not on an attacker's
// page.
func (h *AuthHandler) HandleOAuthLogin(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[chi.URLParam(r, "provider")]
	if !ok {
		http.Error(w, "unknown provider", http.StatusNotFound)
		return
	}

	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, provider.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleOAuthCallback completes the OAuth flow: state check, code
// exchange, identity resolution, session issue.
//
// HTTP: GET /auth/{provider}/callback?code=xxx&state=yyy
//
// When the provider's assertion carries no email and the identity is
// unknown, resolution yields the defined empty result. The pending
// (provider, uid) pair is parked in a short-lived cookie and the
// client is redirected to supply an email (HandleOAuthEmail).
func (h *AuthHandler) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[chi.URLParam(r, "provider")]
	if !ok {
		http.Error(w, "unknown provider", http.StatusNotFound)
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("oauth callback: state mismatch", slog.String("provider", provider.Name()))
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("oauth callback: user denied authorization",
			slog.String("provider", provider.Name()),
			slog.String("error", errParam),
		)
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	assertion, err := provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: exchange failed",
			slog.String("provider", provider.Name()),
			slog.String("error", err.Error()),
		)
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	user, err := h.identity.FindForOAuth(r.Context(), assertion)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		// Empty result: park the pending identity and ask for an email.
		http.SetCookie(w, &http.Cookie{
			Name:     "pending_oauth",
			Value:    assertion.Provider + "|" + assertion.UID,
			Path:     "/auth",
			MaxAge:   600,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, "/?auth=email_required", http.StatusSeeOther)
		return
	}

	result, err := h.identity.SessionFor(user)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleOAuthEmail finishes the no-email fallback: the client posts an
// email and the pending (provider, uid) from the callback cookie is
// resolved with it.
//
// HTTP: POST /auth/email {"email"}
func (h *AuthHandler) HandleOAuthEmail(w http.ResponseWriter, r *http.Request) {
	pending, err := r.Cookie("pending_oauth")
	if err != nil || pending.Value == "" {
		http.Error(w, `{"error":"validation_error","message":"no pending OAuth login"}`, http.StatusBadRequest)
		return
	}
	parts := strings.SplitN(pending.Value, "|", 2)
	if len(parts) != 2 {
		http.Error(w, `{"error":"validation_error","message":"no pending OAuth login"}`, http.StatusBadRequest)
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.identity.CompleteOAuth(r.Context(), parts[0], parts[1], req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: "pending_oauth", Value: "", Path: "/auth", MaxAge: -1})

	result, err := h.identity.SessionFor(user)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, result.User)
}

// HandleLogout clears the session cookie. The token itself stays valid
// until expiry — sessions are stateless — but the browser forgets it.
//
// HTTP: POST /auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /api/me (RequireAuth)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthenticated"}`, http.StatusUnauthorized)
		return
	}

	user, err := h.identity.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleDeleteAccount removes the authenticated user's account and all
// owned content.
//
// HTTP: DELETE /api/me (RequireAuth)
func (h *AuthHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.identity.DeleteAccount(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // enable behind HTTPS
	})
}
