package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/folkbase/folkbase/internal/config"
	"github.com/folkbase/folkbase/pkg/clients/gmailclient"
	"github.com/folkbase/folkbase/pkg/clients/sheetsclient"
	"github.com/folkbase/folkbase/pkg/clients/storageclient"
	"github.com/folkbase/folkbase/pkg/postgres"
	"github.com/folkbase/folkbase/pkg/utils"
)

// AppContext holds the application dependencies shared across all commands.
// The database and Google clients are opened on first use, so commands that
// do not need them never prompt for authorisation, and an interactive
// session authenticates once.
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Secrets  *config.Env
	OAuthCfg *config.OAuthClientConfig
	Logger   *zap.Logger
	Ctx      context.Context

	database      *postgres.DB
	token         *oauth2.Token
	oauthConfig   *oauth2.Config
	gmailClient   *gmailclient.Client
	sheetsClient  *sheetsclient.Client
	storageClient *storageclient.Client
}

// Database connects to Postgres
func (app *AppContext) Database() (*postgres.DB, error) {
	if app.database != nil {
		return app.database, nil
	}
	if err := app.Secrets.RequireDatabase(); err != nil {
		return nil, err
	}

	app.Logger.Info("Connecting to database")
	database, err := postgres.NewDB(app.Ctx, app.Secrets.DatabaseURL, app.Cfg.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.database = database
	return database, nil
}

// googleToken runs the OAuth flow once and caches the token for every Google client
func (app *AppContext) googleToken() (*oauth2.Config, *oauth2.Token, error) {
	if app.token != nil {
		return app.oauthConfig, app.token, nil
	}
	if app.OAuthCfg == nil {
		oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load OAuth client config: %w", err)
		}
		app.OAuthCfg = oauthCfg
	}

	oauthConfig, err := utils.GetOAuthConfig(app.OAuthCfg)
	if err != nil {
		return nil, nil, err
	}
	token, err := utils.GetTokenWithFlow(app.Ctx, oauthConfig, app.Env, app.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get OAuth token: %w", err)
	}
	app.oauthConfig, app.token = oauthConfig, token
	return oauthConfig, token, nil
}

func (app *AppContext) GmailClient() (*gmailclient.Client, error) {
	if app.gmailClient != nil {
		return app.gmailClient, nil
	}
	oauthConfig, token, err := app.googleToken()
	if err != nil {
		return nil, err
	}
	app.Logger.Info("Initializing gmail client")
	client, err := gmailclient.NewClient(app.Ctx, oauthConfig, token, app.Cfg.GmailUserID, app.Cfg.GmailSender)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}
	app.gmailClient = client
	return client, nil
}

func (app *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	if app.sheetsClient != nil {
		return app.sheetsClient, nil
	}
	oauthConfig, token, err := app.googleToken()
	if err != nil {
		return nil, err
	}
	app.Logger.Info("Initializing sheets client")
	client, err := sheetsclient.NewClient(app.Ctx, oauthConfig, token)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.sheetsClient = client
	return client, nil
}

func (app *AppContext) StorageClient() (*storageclient.Client, error) {
	if app.storageClient != nil {
		return app.storageClient, nil
	}
	if app.Cfg.StorageBucket == "" {
		return nil, fmt.Errorf("storageBucket is not configured")
	}
	oauthConfig, token, err := app.googleToken()
	if err != nil {
		return nil, err
	}
	app.Logger.Info("Initializing storage client", zap.String("bucket", app.Cfg.StorageBucket))
	client, err := storageclient.NewClient(app.Ctx, oauthConfig, token, app.Cfg.StorageBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	app.storageClient = client
	return client, nil
}

// Close releases the database pool
func (app *AppContext) Close() {
	if app.database != nil {
		app.database.Close()
	}
}
