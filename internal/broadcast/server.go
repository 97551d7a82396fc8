package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/golden-vcr/server-common/entry"
	"github.com/gorilla/mux"
	"golang.org/x/exp/slog"
	"golang.org/x/oauth2"

	"github.com/golden-vcr/broadcasts"
	"github.com/golden-vcr/broadcasts/internal/session"
)

type Server struct {
	sessions         *session.Store
	newYouTubeClient NewYouTubeClientFunc
}

func NewServer(sessions *session.Store, newYouTubeClient NewYouTubeClientFunc) *Server {
	return &Server{
		sessions:         sessions,
		newYouTubeClient: newYouTubeClient,
	}
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Path("/broadcasts").Methods("GET").HandlerFunc(s.handleGetBroadcasts)
}

// ListResponse is the payload served to the webapp: one page of reshaped
// upcoming broadcasts plus the total count YouTube reports
type ListResponse struct {
	Broadcasts   []broadcasts.Broadcast `json:"broadcasts"`
	TotalResults int                    `json:"totalResults"`
}

// handleGetBroadcasts (GET /broadcasts) uses the session's stored credentials
// to list the user's upcoming live broadcasts
func (s *Server) handleGetBroadcasts(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)
	sessionId := session.IdFromContext(req.Context())

	payload, err := s.listUpcomingBroadcasts(req.Context(), logger, sessionId)
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			writeErrorJson(res, http.StatusUnauthorized, "Not authenticated", "")
			return
		}
		if errors.Is(err, ErrCredentialsExpired) {
			writeErrorJson(res, http.StatusUnauthorized, "Authentication expired. Please login again.", "")
			return
		}
		detail := "internal error"
		var upstreamErr *UpstreamError
		if errors.As(err, &upstreamErr) {
			detail = upstreamErr.Detail
		}
		writeErrorJson(res, http.StatusInternalServerError, "Failed to fetch broadcasts", detail)
		return
	}

	res.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(res).Encode(payload); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
	}
}

// listUpcomingBroadcasts checks that the session holds credentials before
// making a single, no-retry listing call against the YouTube API. A 401 from
// YouTube means the credentials are expired or revoked: the session is
// destroyed so that the webapp's next status check reflects reality, and the
// user has to log in again. Any other downstream failure leaves the session
// untouched.
func (s *Server) listUpcomingBroadcasts(ctx context.Context, logger *slog.Logger, sessionId string) (*ListResponse, error) {
	sess := s.sessions.Get(sessionId)
	if sess == nil || sess.Token == nil || sess.Token.AccessToken == "" {
		return nil, ErrNotAuthenticated
	}

	// A static token source, deliberately: if the access token has gone stale
	// we want the 401 (and the forced re-login), not a silent refresh
	c, err := s.newYouTubeClient(ctx, oauth2.StaticTokenSource(sess.Token))
	if err != nil {
		logger.Error("Failed to initialize YouTube API client", "error", err, "sessionId", sessionId)
		return nil, &UpstreamError{Detail: "failed to initialize YouTube API client"}
	}

	r, err := c.ListUpcomingBroadcasts(ctx)
	if err != nil {
		classified := classifyListError(err)
		if errors.Is(classified, ErrCredentialsExpired) {
			s.sessions.Destroy(sessionId)
			logger.Info("Destroyed session with expired credentials", "sessionId", sessionId)
		} else {
			logger.Error("Failed to list upcoming broadcasts", "error", err, "sessionId", sessionId)
		}
		return nil, classified
	}

	payload := &ListResponse{
		Broadcasts: make([]broadcasts.Broadcast, 0, len(r.Items)),
	}
	for _, item := range r.Items {
		payload.Broadcasts = append(payload.Broadcasts, broadcasts.FromLiveBroadcast(item))
	}
	if r.PageInfo != nil {
		payload.TotalResults = int(r.PageInfo.TotalResults)
	}
	return payload, nil
}

func writeErrorJson(res http.ResponseWriter, status int, message string, detail string) {
	payload := struct {
		Error   string `json:"error"`
		Details string `json:"details,omitempty"`
	}{message, detail}
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	json.NewEncoder(res).Encode(payload)
}
