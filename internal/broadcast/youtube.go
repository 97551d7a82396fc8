package broadcast

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// maxResults caps how many upcoming broadcasts we request per listing; the
// dashboard renders a single page
const maxResults = 25

// YouTubeClient represents the subset of YouTube API client functionality used
// to view the authenticated user's live broadcasts
type YouTubeClient interface {
	ListUpcomingBroadcasts(ctx context.Context) (*youtube.LiveBroadcastListResponse, error)
}

// NewYouTubeClientFunc initializes a YouTubeClient authorized to act on behalf
// of the user whose credentials back the given token source
type NewYouTubeClientFunc func(ctx context.Context, ts oauth2.TokenSource) (YouTubeClient, error)

// NewYouTubeClient returns the production NewYouTubeClientFunc, hitting the
// real YouTube Data API unless apiUrl overrides it (used with cmd/mockprovider)
func NewYouTubeClient(apiUrl string) NewYouTubeClientFunc {
	return func(ctx context.Context, ts oauth2.TokenSource) (YouTubeClient, error) {
		opts := []option.ClientOption{option.WithTokenSource(ts)}
		if apiUrl != "" {
			opts = append(opts, option.WithEndpoint(apiUrl))
		}
		service, err := youtube.NewService(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize YouTube API client: %w", err)
		}
		return &youtubeClient{service: service}, nil
	}
}

type youtubeClient struct {
	service *youtube.Service
}

func (c *youtubeClient) ListUpcomingBroadcasts(ctx context.Context) (*youtube.LiveBroadcastListResponse, error) {
	return c.service.LiveBroadcasts.List([]string{"id", "snippet", "status"}).
		BroadcastStatus("upcoming").
		MaxResults(maxResults).
		Context(ctx).
		Do()
}
