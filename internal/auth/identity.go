package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/golden-vcr/broadcasts"
)

// fetchIdentity hits Google's userinfo endpoint with the user's new
// credentials to resolve the profile snapshot we store in their session
func fetchIdentity(ctx context.Context, ts oauth2.TokenSource, userinfoUrl string) (*broadcasts.Identity, error) {
	opts := []option.ClientOption{option.WithTokenSource(ts)}
	if userinfoUrl != "" {
		opts = append(opts, option.WithEndpoint(userinfoUrl))
	}
	service, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize userinfo client: %w", err)
	}

	userinfo, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	if userinfo.Id == "" {
		return nil, errors.New("userinfo response carried no user id")
	}
	return &broadcasts.Identity{
		Id:      userinfo.Id,
		Email:   userinfo.Email,
		Name:    userinfo.Name,
		Picture: userinfo.Picture,
	}, nil
}
