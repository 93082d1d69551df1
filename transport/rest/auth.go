package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/gridgames/tictactoe-llm-backend/internal/config"
	"github.com/gridgames/tictactoe-llm-backend/internal/entity"
	"github.com/gridgames/tictactoe-llm-backend/internal/pkg"
)

const (
	authCookieName  = "auth_token"
	stateCookieName = "oauthstate"

	urlUserInfo = "https://www.googleapis.com/oauth2/v2/userinfo"
)

type userService interface {
	GetOrCreateByEmail(ctx context.Context, email string) (*entity.User, error)
}

type authService interface {
	GenerateToken(userID, email string) (string, error)
	ParseToken(tokenString string) (string, error)
}

// oauthFlow is the part of *oauth2.Config the callback handler needs.
type oauthFlow interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	Client(ctx context.Context, t *oauth2.Token) *http.Client
}

// NewOauthConfig - builds the Google OAuth config used for login.
func NewOauthConfig(conf *config.Config) *oauth2.Config {
	return &oauth2.Config{
		RedirectURL:  conf.GoogleOAuth.RedirectURL,
		ClientID:     conf.GoogleOAuth.ClientID,
		ClientSecret: conf.GoogleOAuth.ClientSecret,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email"},
		Endpoint:     google.Endpoint,
	}
}

func (that *Handlers) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := pkg.GenerateNewSessionID()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
	})

	url := that.oauth.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (that *Handlers) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil {
		http.Error(w, "State cookie not found", http.StatusBadRequest)
		return
	}

	if stateCookie.Value != r.URL.Query().Get("state") {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Code not found in request", http.StatusBadRequest)
		return
	}

	token, err := that.oauth.Exchange(ctx, code)
	if err != nil {
		http.Error(w, "Code exchange failed", http.StatusInternalServerError)
		return
	}

	client := that.oauth.Client(ctx, token)
	resp, err := client.Get(urlUserInfo)
	if err != nil {
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	var userInfo struct {
		Email string `json:"email"`
	}

	if err = json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		http.Error(w, "Failed to parse user info", http.StatusInternalServerError)
		return
	}

	user, err := that.users.GetOrCreateByEmail(ctx, userInfo.Email)
	if err != nil {
		http.Error(w, "Failed to get user", http.StatusInternalServerError)
		return
	}

	tokenString, err := that.auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		http.Error(w, "Failed to generate auth token", http.StatusInternalServerError)
		return
	}

	// Attach the user to the browser session, so stats recorded for the
	// session land under the durable user ID.
	if sessionCookie, cookieErr := r.Cookie(sessionCookieName); cookieErr == nil {
		if linkErr := that.games.LinkUser(ctx, sessionCookie.Value, user.ID); linkErr != nil {
			that.logger.Error("failed to link user to session", "error", linkErr)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    tokenString,
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
