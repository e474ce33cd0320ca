package routehandlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coreybb/menuorders/auth"
	"github.com/coreybb/menuorders/webutil"
)

// TokenHandler exchanges username/password form credentials for a bearer token.
type TokenHandler struct {
	Tokens *auth.TokenService
}

func NewTokenHandler(tokens *auth.TokenService) *TokenHandler {
	return &TokenHandler{Tokens: tokens}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// HandleLogin implements POST /token with a form-encoded body.
func (h *TokenHandler) HandleLogin(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return webutil.ErrUnprocessableEntityWrap("Invalid form payload", err)
	}
	defer r.Body.Close()

	if !r.PostForm.Has("username") || !r.PostForm.Has("password") {
		return webutil.ErrUnprocessableEntity("Missing required fields (username, password)")
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	user, err := h.Tokens.Authenticate(username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return webutil.ErrUnauthorizedWrap("Incorrect username or password", err)
		}
		return fmt.Errorf("failed to authenticate %s: %w", username, err)
	}

	token, err := h.Tokens.IssueToken(user.Username, h.Tokens.TTL())
	if err != nil {
		return webutil.ErrInternalServerWrap("Failed to issue access token", err)
	}

	slog.Info("Access token issued", "user", user.Username, "ttl", h.Tokens.TTL())
	webutil.RespondWithJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   auth.TokenType,
	})
	return nil
}
