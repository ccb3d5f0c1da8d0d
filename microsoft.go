package authform

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

const microsoftUserInfoURL = "https://graph.microsoft.com/v1.0/me"

type MicrosoftProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewMicrosoftProvider signs in against the multi-tenant "common" endpoint.
func NewMicrosoftProvider(clientID, clientSecret, redirectURL string) *MicrosoftProvider {
	return &MicrosoftProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"User.Read"},
			Endpoint:     microsoft.AzureADEndpoint("common"),
		},
		userInfoURL: microsoftUserInfoURL,
	}
}

func (p *MicrosoftProvider) Name() string { return "microsoft" }

func (p *MicrosoftProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

func (p *MicrosoftProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.config.Exchange(ctx, code)
}

func (p *MicrosoftProvider) GetUserInfo(ctx context.Context, token *oauth2.Token) (OAuthUserInfo, error) {
	var data struct {
		ID                string `json:"id"`
		Email             string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
		Name              string `json:"displayName"`
	}
	if err := fetchUserInfo(ctx, p.config.Client(ctx, token), p.userInfoURL, &data); err != nil {
		return OAuthUserInfo{}, err
	}
	email := data.Email
	if email == "" {
		email = data.UserPrincipalName
	}
	return OAuthUserInfo{ID: data.ID, Email: email, Name: data.Name}, nil
}
