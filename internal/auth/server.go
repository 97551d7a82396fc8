package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/golden-vcr/server-common/entry"
	"github.com/gorilla/mux"
	"golang.org/x/exp/slog"
	"golang.org/x/oauth2"

	"github.com/golden-vcr/broadcasts"
	"github.com/golden-vcr/broadcasts/internal/events"
	"github.com/golden-vcr/broadcasts/internal/session"
	"github.com/golden-vcr/broadcasts/internal/state"
)

// Error codes surfaced to the webapp via redirect when a login attempt dies
// partway through; the webapp shows a corresponding message and offers to
// restart the flow
const (
	ErrorCodeInvalidState = "invalid_state"
	ErrorCodeNoCode       = "no_code"
	ErrorCodeAuthFailed   = "auth_failed"
)

// FetchIdentityFunc fetches the user's profile details from Google's userinfo
// endpoint, authorized by the token source for a just-exchanged token bundle
type FetchIdentityFunc func(ctx context.Context, ts oauth2.TokenSource) (*broadcasts.Identity, error)

type Server struct {
	appOrigin   string
	oauthConfig *oauth2.Config

	states   *state.Store
	sessions *session.Store
	cookies  *session.Cookies

	fetchIdentity FetchIdentityFunc
	producer      events.Producer
}

// NewServer prepares the handlers for the login flow: appOrigin is the webapp
// URL that callback results redirect to, oauthConfig carries our Google client
// credentials and scopes, and userinfoUrl optionally overrides the endpoint
// that profile details are fetched from (used with cmd/mockprovider; leave ""
// to hit Google). producer may be nil to disable session event publishing.
func NewServer(appOrigin string, oauthConfig *oauth2.Config, userinfoUrl string, states *state.Store, sessions *session.Store, cookies *session.Cookies, producer events.Producer) *Server {
	return &Server{
		appOrigin:   appOrigin,
		oauthConfig: oauthConfig,
		states:      states,
		sessions:    sessions,
		cookies:     cookies,
		fetchIdentity: func(ctx context.Context, ts oauth2.TokenSource) (*broadcasts.Identity, error) {
			return fetchIdentity(ctx, ts, userinfoUrl)
		},
		producer: producer,
	}
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Path("/auth/status").Methods("GET").HandlerFunc(s.handleGetStatus)
	r.Path("/auth/authorize").Methods("GET").HandlerFunc(s.handleGetAuthorize)
	r.Path("/auth/callback").Methods("GET").HandlerFunc(s.handleGetCallback)
	r.Path("/auth/logout").Methods("POST").HandlerFunc(s.handlePostLogout)
}

// handleGetStatus (GET /auth/status) tells the webapp whether the current
// session is logged in, and if so as whom
func (s *Server) handleGetStatus(res http.ResponseWriter, req *http.Request) {
	sessionId := session.IdFromContext(req.Context())

	payload := struct {
		IsAuthenticated bool                 `json:"isAuthenticated"`
		User            *broadcasts.Identity `json:"user"`
	}{}
	if sess := s.sessions.Get(sessionId); sess != nil && sess.Token != nil && sess.Token.AccessToken != "" {
		payload.IsAuthenticated = true
		payload.User = sess.Identity
	}

	res.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(res).Encode(payload); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
	}
}

// handleGetAuthorize (GET /auth/authorize) mints a state token and responds
// with the Google consent URL the webapp should send the user to
func (s *Server) handleGetAuthorize(res http.ResponseWriter, req *http.Request) {
	authUrl := s.oauthConfig.AuthCodeURL(
		s.states.Issue(),
		oauth2.AccessTypeOffline,
		// Force the consent screen on every login: without it, Google omits
		// the refresh token for users who've already granted access once
		oauth2.SetAuthURLParam("prompt", "consent"),
	)

	res.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(res).Encode(struct {
		AuthUrl string `json:"authUrl"`
	}{authUrl}); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
	}
}

// handleGetCallback (GET /auth/callback) is the redirect_uri that Google sends
// the user back to once they've approved (or abandoned) the consent screen.
// Whatever happens here, the user ends up redirected to the webapp: with
// ?auth=success if their session now holds working credentials, or with
// ?error=<code> otherwise.
func (s *Server) handleGetCallback(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)
	sessionId := session.IdFromContext(req.Context())

	// The state token proves this callback corresponds to a flow we started:
	// it's checked and consumed before we spend any network calls on the
	// request, and once consumed it's dead even if a later step fails
	stateValue := req.URL.Query().Get("state")
	if stateValue == "" || !s.states.ValidateAndConsume(stateValue) {
		logger.Error("Rejected callback with invalid state token", "sessionId", sessionId)
		s.redirectWithError(res, req, ErrorCodeInvalidState)
		return
	}

	code := req.URL.Query().Get("code")
	if code == "" {
		logger.Error("Rejected callback with no authorization code", "sessionId", sessionId)
		s.redirectWithError(res, req, ErrorCodeNoCode)
		return
	}

	// Exchange the short-lived authorization code for a token bundle, then use
	// that bundle to look up who just logged in. Both steps collapse to the
	// same external-facing error code: the webapp doesn't need to know (and
	// shouldn't relay) what exactly Google objected to.
	token, err := s.oauthConfig.Exchange(req.Context(), code)
	if err != nil {
		logger.Error("Failed to exchange authorization code", "error", err, "sessionId", sessionId)
		s.redirectWithError(res, req, ErrorCodeAuthFailed)
		return
	}
	identity, err := s.fetchIdentity(req.Context(), s.oauthConfig.TokenSource(req.Context(), token))
	if err != nil {
		logger.Error("Failed to fetch user identity", "error", err, "sessionId", sessionId)
		s.redirectWithError(res, req, ErrorCodeAuthFailed)
		return
	}

	if !s.sessions.SetCredentials(sessionId, token, identity) {
		logger.Error("Session expired before credentials could be stored", "sessionId", sessionId)
		s.redirectWithError(res, req, ErrorCodeAuthFailed)
		return
	}

	logger.Info("User authenticated", "sessionId", sessionId, "userId", identity.Id)
	s.publish(req.Context(), logger, events.SessionEvent{
		Type:      events.TypeUserAuthenticated,
		SessionId: sessionId,
		UserId:    identity.Id,
		Email:     identity.Email,
	})
	http.Redirect(res, req, s.appOrigin+"?auth=success", http.StatusFound)
}

// handlePostLogout (POST /auth/logout) destroys the current session, dropping
// its credentials and identity claims, and expires the session cookie
func (s *Server) handlePostLogout(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)
	sessionId := session.IdFromContext(req.Context())

	s.sessions.Destroy(sessionId)
	s.cookies.Clear(res)

	logger.Info("User logged out", "sessionId", sessionId)
	s.publish(req.Context(), logger, events.SessionEvent{
		Type:      events.TypeSessionDestroyed,
		SessionId: sessionId,
	})

	res.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(res).Encode(struct {
		Message string `json:"message"`
	}{"Logged out successfully"}); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) redirectWithError(res http.ResponseWriter, req *http.Request, errorCode string) {
	http.Redirect(res, req, s.appOrigin+"?error="+errorCode, http.StatusFound)
}

func (s *Server) publish(ctx context.Context, logger *slog.Logger, ev events.SessionEvent) {
	if s.producer == nil {
		return
	}
	if err := s.producer.Publish(ctx, ev); err != nil {
		logger.Error("Failed to publish session event", "error", err, "eventType", ev.Type)
	}
}
