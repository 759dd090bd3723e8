package googlecalendar

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// StaticTokenProvider serves every user from one pre-authorized refresh
// token. This fits the single-household deployment model; a multi-tenant
// deployment swaps in a provider backed by per-user token storage.
type StaticTokenProvider struct {
	config       *oauth2.Config
	refreshToken string
}

// NewStaticTokenProvider creates a provider from the OAuth client
// credentials and a long-lived refresh token
func NewStaticTokenProvider(clientID, clientSecret, refreshToken string) (*StaticTokenProvider, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("Google OAuth client credentials are required")
	}
	if refreshToken == "" {
		return nil, fmt.Errorf("Google refresh token is required")
	}
	return &StaticTokenProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{calendar.CalendarEventsScope},
		},
		refreshToken: refreshToken,
	}, nil
}

// TokenSource returns a source that refreshes access tokens as needed
func (p *StaticTokenProvider) TokenSource(ctx context.Context, userID string) (oauth2.TokenSource, error) {
	return p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: p.refreshToken}), nil
}
