package broadcast

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/youtube/v3"

	"github.com/golden-vcr/broadcasts"
	"github.com/golden-vcr/broadcasts/internal/session"
)

type mockYouTubeClient struct {
	r     *youtube.LiveBroadcastListResponse
	err   error
	calls int
}

func (m *mockYouTubeClient) ListUpcomingBroadcasts(ctx context.Context) (*youtube.LiveBroadcastListResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.r, nil
}

func Test_Server_handleGetBroadcasts(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		c             *mockYouTubeClient
		wantStatus    int
		wantBody      string
		wantCalls     int
		wantSession   bool
	}{
		{
			"unauthenticated session is refused before any downstream call",
			false,
			&mockYouTubeClient{},
			401,
			`{"error":"Not authenticated"}`,
			0,
			true,
		},
		{
			"empty listing yields an empty page",
			true,
			&mockYouTubeClient{
				r: &youtube.LiveBroadcastListResponse{
					PageInfo: &youtube.PageInfo{TotalResults: 0},
				},
			},
			200,
			`{"broadcasts":[],"totalResults":0}`,
			1,
			true,
		},
		{
			"broadcasts are reshaped into flat records",
			true,
			&mockYouTubeClient{
				r: &youtube.LiveBroadcastListResponse{
					Items: []*youtube.LiveBroadcast{
						{
							Id: "x",
							Snippet: &youtube.LiveBroadcastSnippet{
								Title:              "T",
								ScheduledStartTime: "2024-01-01T00:00:00Z",
								Thumbnails:         &youtube.ThumbnailDetails{},
							},
							Status: &youtube.LiveBroadcastStatus{
								LifeCycleStatus: "ready",
								PrivacyStatus:   "public",
							},
						},
					},
					PageInfo: &youtube.PageInfo{TotalResults: 1},
				},
			},
			200,
			`{"broadcasts":[{"id":"x","title":"T","scheduledStartTime":"2024-01-01T00:00:00Z","thumbnail":null,"status":"ready","privacyStatus":"public"}],"totalResults":1}`,
			1,
			true,
		},
		{
			"a 401 from YouTube destroys the session",
			true,
			&mockYouTubeClient{
				err: &googleapi.Error{Code: 401, Message: "Invalid Credentials"},
			},
			401,
			`{"error":"Authentication expired. Please login again."}`,
			1,
			false,
		},
		{
			"any other API failure is surfaced without touching the session",
			true,
			&mockYouTubeClient{
				err: &googleapi.Error{Code: 503, Message: "Backend Error"},
			},
			500,
			`{"error":"Failed to fetch broadcasts","details":"YouTube API request failed with status 503"}`,
			1,
			true,
		},
		{
			"a transport failure is surfaced with a generic detail",
			true,
			&mockYouTubeClient{
				err: errors.New("dial tcp: connection refused"),
			},
			500,
			`{"error":"Failed to fetch broadcasts","details":"failed to reach YouTube API"}`,
			1,
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := session.NewStore(session.DefaultMaxAge)
			sessionId := sessions.Create()
			if tt.authenticated {
				sessions.SetCredentials(sessionId, &oauth2.Token{AccessToken: "stub-access-token"}, &broadcasts.Identity{Id: "109"})
			}

			constructorCalls := 0
			s := &Server{
				sessions: sessions,
				newYouTubeClient: func(ctx context.Context, ts oauth2.TokenSource) (YouTubeClient, error) {
					constructorCalls++
					return tt.c, nil
				},
			}

			req := httptest.NewRequest(http.MethodGet, "/broadcasts", nil)
			req = req.WithContext(session.ContextWithId(req.Context(), sessionId))
			res := httptest.NewRecorder()
			s.handleGetBroadcasts(res, req)

			assert.Equal(t, tt.wantStatus, res.Code)
			assert.JSONEq(t, tt.wantBody, res.Body.String())
			assert.Equal(t, tt.wantCalls, tt.c.calls)
			assert.Equal(t, tt.wantCalls, constructorCalls)

			if tt.wantSession {
				assert.NotNil(t, sessions.Get(sessionId))
			} else {
				assert.Nil(t, sessions.Get(sessionId))
				assert.False(t, sessions.IsAuthenticated(sessionId))
			}
		})
	}
}

func Test_Server_handleGetBroadcasts_clientInitFailure(t *testing.T) {
	sessions := session.NewStore(session.DefaultMaxAge)
	sessionId := sessions.Create()
	sessions.SetCredentials(sessionId, &oauth2.Token{AccessToken: "stub-access-token"}, &broadcasts.Identity{Id: "109"})

	s := &Server{
		sessions: sessions,
		newYouTubeClient: func(ctx context.Context, ts oauth2.TokenSource) (YouTubeClient, error) {
			return nil, errors.New("mock init failure")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/broadcasts", nil)
	req = req.WithContext(session.ContextWithId(req.Context(), sessionId))
	res := httptest.NewRecorder()
	s.handleGetBroadcasts(res, req)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch broadcasts","details":"failed to initialize YouTube API client"}`, res.Body.String())
	assert.NotNil(t, sessions.Get(sessionId))
}
