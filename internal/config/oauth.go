package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// OAuthClientEnvVar names an explicit path to the OAuth client file, which
// wins over the folkbase_oauth[.<env>].json lookup
const OAuthClientEnvVar = "FOLKBASE_OAUTH_CLIENT"

// OAuthClientConfig is the "installed app" client file downloaded from the
// Google Cloud console. The operator signs in with it once per environment to
// grant the Gmail, Sheets and Storage scopes.
type OAuthClientConfig struct {
	Installed OAuthInstalled `json:"installed" validate:"required"`
}

type OAuthInstalled struct {
	ClientID                string   `json:"client_id" validate:"required"`
	ProjectID               string   `json:"project_id" validate:"required"`
	AuthURI                 string   `json:"auth_uri" validate:"required,url"`
	TokenURI                string   `json:"token_uri" validate:"required,url"`
	AuthProviderX509CertURL string   `json:"auth_provider_x509_cert_url" validate:"required,url"`
	ClientSecret            string   `json:"client_secret" validate:"required"`
	RedirectURIs            []string `json:"redirect_uris" validate:"required,min=1,dive,uri"`
}

// LoadOAuthClientWithEnv finds the client file for env ("prod" looks for
// folkbase_oauth.prod.json) unless FOLKBASE_OAUTH_CLIENT points elsewhere
func LoadOAuthClientWithEnv(env string) (*OAuthClientConfig, error) {
	if path := os.Getenv(OAuthClientEnvVar); path != "" {
		return LoadOAuthClientFromPath(path)
	}

	path, err := locateFile(envFileName("folkbase_oauth", env, "json"))
	if err != nil {
		return nil, fmt.Errorf("failed to find oauth client file: %w", err)
	}
	return LoadOAuthClientFromPath(path)
}

func LoadOAuthClientFromPath(path string) (*OAuthClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth client file: %w", err)
	}

	var client OAuthClientConfig
	if err := json.Unmarshal(data, &client); err != nil {
		return nil, fmt.Errorf("failed to parse oauth client file %s: %w", path, err)
	}
	if err := validate.Struct(&client); err != nil {
		return nil, fmt.Errorf("oauth client validation failed: %w", err)
	}
	return &client, nil
}
