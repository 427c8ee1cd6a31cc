package google

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/webshop_backend/models"
	"bitbucket.org/mmdatafocus/webshop_backend/utils"
	"golang.org/x/oauth2"
	googleauth "golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// NewDriveService builds a Drive client from a stored refresh token. The
// token source exchanges it for a short-lived access token on first use and
// refreshes transparently afterwards; nothing is persisted back.
func NewDriveService(ctx context.Context, account *models.GoogleDriveCredentials) (*drive.Service, error) {
	if account.ClientId == "" || account.ClientSecret == "" {
		return nil, fmt.Errorf("client id and client secret must be provided: %w", utils.ErrUpstreamUnavailable)
	}
	if account.RefreshToken == "" {
		return nil, fmt.Errorf("refresh token missing for %s: %w", account.Email, utils.ErrUpstreamUnavailable)
	}

	conf := &oauth2.Config{
		ClientID:     account.ClientId,
		ClientSecret: account.ClientSecret,
		Endpoint:     googleauth.Endpoint,
		Scopes:       []string{drive.DriveScope},
	}
	tokenSource := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: account.RefreshToken})

	return drive.NewService(ctx, option.WithTokenSource(tokenSource))
}
