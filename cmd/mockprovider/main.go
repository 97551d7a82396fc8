// mockprovider is a local-development stand-in for the Google endpoints that
// the broadcasts server talks to: the OAuth consent page and token endpoint,
// the userinfo endpoint, and the YouTube liveBroadcasts API. Point the server
// at it by setting GOOGLE_AUTH_URL, GOOGLE_TOKEN_URL, GOOGLE_USERINFO_URL and
// YOUTUBE_API_URL, and the entire login-and-list flow can be exercised without
// real Google credentials.
//
// POST /revoke invalidates every token issued so far, which is the easiest way
// to exercise the server's expired-credentials handling: the next /broadcasts
// request will get a 401 from here and tear the session down.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/codingconcepts/env"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"google.golang.org/api/youtube/v3"
)

type Config struct {
	BindAddr   string `env:"BIND_ADDR"`
	ListenPort uint16 `env:"MOCK_PROVIDER_PORT" default:"5106"`
}

type server struct {
	codes  map[string]bool
	tokens map[string]bool
	mu     sync.Mutex
}

func main() {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Fatalf("error loading .env file: %v", err)
	}
	config := Config{}
	if err := env.Set(&config); err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	s := &server{
		codes:  make(map[string]bool),
		tokens: make(map[string]bool),
	}

	r := mux.NewRouter()
	r.Path("/auth").Methods("GET").HandlerFunc(s.handleGetAuth)
	r.Path("/token").Methods("POST").HandlerFunc(s.handlePostToken)
	r.Path("/oauth2/v2/userinfo").Methods("GET").HandlerFunc(s.handleGetUserinfo)
	r.Path("/youtube/v3/liveBroadcasts").Methods("GET").HandlerFunc(s.handleGetLiveBroadcasts)
	r.Path("/revoke").Methods("POST").HandlerFunc(s.handlePostRevoke)

	addr := fmt.Sprintf("%s:%d", config.BindAddr, config.ListenPort)
	log.Printf("mock provider listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

// handleGetAuth plays the part of the Google consent screen: it skips straight
// to approval, minting an authorization code and bouncing the user back to the
// redirect_uri with the caller's state value echoed verbatim
func (s *server) handleGetAuth(res http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	redirectUri := q.Get("redirect_uri")
	if redirectUri == "" {
		http.Error(res, "'redirect_uri' value not found in URL query params", http.StatusBadRequest)
		return
	}

	code := uuid.NewString()
	s.mu.Lock()
	s.codes[code] = true
	s.mu.Unlock()

	callback := redirectUri + "?" + url.Values{
		"code":  {code},
		"state": {q.Get("state")},
		"scope": {q.Get("scope")},
	}.Encode()
	http.Redirect(res, req, callback, http.StatusSeeOther)
}

// handlePostToken exchanges a code we minted for a bearer token; unknown or
// reused codes are rejected the way Google rejects them
func (s *server) handlePostToken(res http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		http.Error(res, err.Error(), http.StatusBadRequest)
		return
	}
	code := req.PostForm.Get("code")

	s.mu.Lock()
	known := s.codes[code]
	delete(s.codes, code)
	var accessToken string
	if known {
		accessToken = uuid.NewString()
		s.tokens[accessToken] = true
	}
	s.mu.Unlock()

	if !known {
		res.Header().Set("Content-Type", "application/json")
		res.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(res).Encode(map[string]string{"error": "invalid_grant"})
		return
	}

	res.Header().Set("Content-Type", "application/json")
	json.NewEncoder(res).Encode(map[string]any{
		"access_token":  accessToken,
		"token_type":    "Bearer",
		"refresh_token": uuid.NewString(),
		"expires_in":    3599,
		"scope":         req.PostForm.Get("scope"),
	})
}

func (s *server) authorize(req *http.Request) bool {
	value := req.Header.Get("Authorization")
	accessToken, ok := strings.CutPrefix(value, "Bearer ")
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[accessToken]
}

func writeUnauthorized(res http.ResponseWriter) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(res).Encode(map[string]any{
		"error": map[string]any{
			"code":    401,
			"message": "Invalid Credentials",
			"status":  "UNAUTHENTICATED",
		},
	})
}

func (s *server) handleGetUserinfo(res http.ResponseWriter, req *http.Request) {
	if !s.authorize(req) {
		writeUnauthorized(res)
		return
	}
	res.Header().Set("Content-Type", "application/json")
	json.NewEncoder(res).Encode(map[string]string{
		"id":      "100000000000000000109",
		"email":   "tape@goldenvcr.com",
		"name":    "Tape Curator",
		"picture": "https://goldenvcr.com/images/avatar.png",
	})
}

func (s *server) handleGetLiveBroadcasts(res http.ResponseWriter, req *http.Request) {
	if !s.authorize(req) {
		writeUnauthorized(res)
		return
	}

	items := []*youtube.LiveBroadcast{
		{
			Id:   "mock-broadcast-1",
			Kind: "youtube#liveBroadcast",
			Snippet: &youtube.LiveBroadcastSnippet{
				Title:              "Friday Night VHS Premiere",
				Description:        "Live from the archive.",
				ScheduledStartTime: time.Now().Add(26 * time.Hour).UTC().Format(time.RFC3339),
				Thumbnails: &youtube.ThumbnailDetails{
					Default: &youtube.Thumbnail{
						Url:    "https://i.ytimg.com/vi/mock-broadcast-1/default_live.jpg",
						Width:  120,
						Height: 90,
					},
				},
			},
			Status: &youtube.LiveBroadcastStatus{
				LifeCycleStatus: "ready",
				PrivacyStatus:   "public",
			},
		},
		{
			Id:   "mock-broadcast-2",
			Kind: "youtube#liveBroadcast",
			Snippet: &youtube.LiveBroadcastSnippet{
				Title:              "Tape Digitization Marathon",
				ScheduledStartTime: time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
			},
			Status: &youtube.LiveBroadcastStatus{
				LifeCycleStatus: "created",
				PrivacyStatus:   "unlisted",
			},
		},
	}

	res.Header().Set("Content-Type", "application/json")
	json.NewEncoder(res).Encode(&youtube.LiveBroadcastListResponse{
		Kind:  "youtube#liveBroadcastListResponse",
		Items: items,
		PageInfo: &youtube.PageInfo{
			TotalResults:   int64(len(items)),
			ResultsPerPage: int64(len(items)),
		},
	})
}

// handlePostRevoke invalidates all previously-issued tokens
func (s *server) handlePostRevoke(res http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	n := len(s.tokens)
	s.tokens = make(map[string]bool)
	s.mu.Unlock()

	res.Header().Set("Content-Type", "application/json")
	json.NewEncoder(res).Encode(map[string]int{"revoked": n})
}
