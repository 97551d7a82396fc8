package main

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/codingconcepts/env"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/cors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/golden-vcr/broadcasts"
	"github.com/golden-vcr/broadcasts/internal/auth"
	"github.com/golden-vcr/broadcasts/internal/broadcast"
	"github.com/golden-vcr/broadcasts/internal/events"
	"github.com/golden-vcr/broadcasts/internal/session"
	"github.com/golden-vcr/broadcasts/internal/state"
	"github.com/golden-vcr/server-common/entry"
)

type Config struct {
	BindAddr   string `env:"BIND_ADDR"`
	ListenPort uint16 `env:"LISTEN_PORT" default:"5006"`

	// ClientURL is the webapp origin: it's allowed through CORS with
	// credentials, and it's where callback results redirect to
	ClientURL string `env:"CLIENT_URL" default:"http://localhost:5173"`

	GoogleClientId     string `env:"GOOGLE_CLIENT_ID" required:"true"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET" required:"true"`
	GoogleRedirectURI  string `env:"GOOGLE_REDIRECT_URI" default:"http://localhost:5006/auth/callback"`

	SessionSecret       string `env:"SESSION_SECRET" required:"true"`
	SessionMaxAgeHours  int    `env:"SESSION_MAX_AGE_HOURS" default:"24"`
	SessionCookieSecure bool   `env:"SESSION_COOKIE_SECURE" default:"false"`

	// Optional endpoint overrides, pointing the OAuth flow and API calls at
	// cmd/mockprovider during local development; leave unset to use Google
	GoogleAuthURL     string `env:"GOOGLE_AUTH_URL"`
	GoogleTokenURL    string `env:"GOOGLE_TOKEN_URL"`
	GoogleUserinfoURL string `env:"GOOGLE_USERINFO_URL"`
	YouTubeApiURL     string `env:"YOUTUBE_API_URL"`

	// Optional AMQP settings: when RMQ_HOST is set, session lifecycle events
	// are published to the session-events exchange
	RmqHost     string `env:"RMQ_HOST"`
	RmqPort     int    `env:"RMQ_PORT" default:"5672"`
	RmqVhost    string `env:"RMQ_VHOST"`
	RmqUser     string `env:"RMQ_USER"`
	RmqPassword string `env:"RMQ_PASSWORD"`
}

func main() {
	app, ctx := entry.NewApplication("broadcasts")
	defer app.Stop()

	// Parse config from environment variables
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		app.Fail("Failed to load .env file", err)
	}
	config := Config{}
	if err := env.Set(&config); err != nil {
		app.Fail("Failed to load config", err)
	}

	// Optionally initialize an AMQP producer for session lifecycle events;
	// without a broker configured the service simply doesn't publish them
	var producer events.Producer
	if config.RmqHost != "" {
		amqpConn, err := amqp.Dial(events.FormatConnectionString(config.RmqHost, config.RmqPort, config.RmqVhost, config.RmqUser, config.RmqPassword))
		if err != nil {
			app.Fail("Failed to connect to AMQP server", err)
		}
		producer, err = events.NewProducer(amqpConn, "session-events")
		if err != nil {
			app.Fail("Failed to initialize AMQP producer", err)
		}
		app.Log().Info("Session event publishing enabled", "exchange", "session-events")
	}

	// Prepare the OAuth client config for Google's authorization code grant
	// flow, requesting read-only access to the user's YouTube data
	endpoint := google.Endpoint
	if config.GoogleAuthURL != "" {
		endpoint.AuthURL = config.GoogleAuthURL
	}
	if config.GoogleTokenURL != "" {
		endpoint.TokenURL = config.GoogleTokenURL
	}
	oauthConfig := &oauth2.Config{
		ClientID:     config.GoogleClientId,
		ClientSecret: config.GoogleClientSecret,
		RedirectURL:  config.GoogleRedirectURI,
		Scopes:       broadcasts.Scopes,
		Endpoint:     endpoint,
	}

	// Initialize the in-memory stores shared across requests: both are lost
	// on restart by design, which just means users log in again
	sessionMaxAge := time.Duration(config.SessionMaxAgeHours) * time.Hour
	states := state.NewStore()
	sessions := session.NewStore(sessionMaxAge)
	cookies := session.NewCookies(config.SessionSecret, sessionMaxAge, config.SessionCookieSecure)

	// Start setting up our HTTP handlers, using gorilla/mux for routing
	r := mux.NewRouter()

	r.Path("/health").Methods("GET").HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		res.Header().Set("Content-Type", "application/json")
		json.NewEncoder(res).Encode(struct {
			Status string `json:"status"`
		}{"OK"})
	})

	// The webapp can GET /auth/authorize to obtain a Google consent URL, and
	// the resulting callback lands on GET /auth/callback; /auth/status and
	// POST /auth/logout round out the session lifecycle
	authServer := auth.NewServer(config.ClientURL, oauthConfig, config.GoogleUserinfoURL, states, sessions, cookies, producer)
	authServer.RegisterRoutes(r)

	// A logged-in user can GET /broadcasts to list their upcoming YouTube
	// live broadcasts
	broadcastServer := broadcast.NewServer(sessions, broadcast.NewYouTubeClient(config.YouTubeApiURL))
	broadcastServer.RegisterRoutes(r)

	// Every request gets a session, minted on first contact and carried in an
	// HMAC-signed cookie; CORS allows the webapp origin with credentials so
	// that cookie survives cross-origin fetches
	withSessions := session.Middleware(sessions, cookies)(r)
	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{config.ClientURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowCredentials: true,
	}).Handler(withSessions)

	// Handle incoming HTTP connections until our top-level context is
	// canceled, at which point shut down cleanly
	entry.RunServer(ctx, app.Log(), handler, config.BindAddr, config.ListenPort)
}
