package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/auth"
	"github.com/folkbase/folkbase/pkg/blob"
	"github.com/folkbase/folkbase/pkg/blob/memblob"
	"github.com/folkbase/folkbase/pkg/db/memdb"
	"github.com/folkbase/folkbase/pkg/httpapi"
	"github.com/folkbase/folkbase/pkg/live"
	"github.com/folkbase/folkbase/pkg/postgres"
	"github.com/folkbase/folkbase/pkg/utils/logging"
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	var memory bool
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and live feed",
		Long: `Run the HTTP API and live feed until interrupted.

With --memory the server keeps everything in memory and sends no email,
which is handy for trying the web client without a database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.Cfg.HTTPAddr
			}

			ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			serverLogger, err := logging.New(app.Secrets.LoggerConfig())
			if err != nil {
				return fmt.Errorf("failed to initialize server logger: %w", err)
			}
			defer serverLogger.Sync()
			app.Logger = serverLogger.With(zap.String(logging.FieldEnv, app.Env))

			bus := live.NewBus()
			opts := httpapi.Options{Bus: bus, Config: app.Cfg, Logger: app.Logger}

			sessionSecret := app.Secrets.SessionSecret
			var mailer auth.Mailer

			if memory {
				app.Logger.Warn("Serving from memory; nothing will be persisted")
				store := memdb.New(bus)
				files := memblob.New(fmt.Sprintf("http://localhost%s/blobs", addr))
				opts.Database, opts.Blobs, opts.Files = store, files, files
				if sessionSecret == "" {
					sessionSecret = uuid.NewString() + uuid.NewString()
				}
			} else {
				if err := app.Secrets.RequireSessionSecret(); err != nil {
					return err
				}
				database, err := app.Database()
				if err != nil {
					return err
				}
				opts.Database = database

				blobs, err := app.blobStore()
				if err != nil {
					return err
				}
				opts.Blobs = blobs
				if files, ok := blobs.(*memblob.Store); ok {
					opts.Files = files
				}

				if app.Cfg.GmailSender != "" {
					gmail, err := app.GmailClient()
					if err != nil {
						return err
					}
					opts.Mailer, mailer = gmail, gmail
				} else {
					app.Logger.Warn("gmailSender not configured; notifications and password resets are disabled")
				}

				go listenForChanges(ctx, app, bus)
			}

			opts.Auth = auth.NewService(opts.Database, bus, mailer, app.Logger, auth.Config{
				SessionSecret:     []byte(sessionSecret),
				CustomTokenSecret: []byte(app.Secrets.CustomTokenSecret),
				SessionTTL:        app.Secrets.SessionTTL,
				ResetURL:          app.Cfg.PasswordResetURL,
			})

			fmt.Printf("\n✓ Serving %s on %s\n", app.Cfg.TeamName, addr)
			if err := httpapi.NewServer(opts).Run(ctx, addr); err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			fmt.Println("✓ Server stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&memory, "memory", false, "Keep all data in memory (demo mode)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to httpAddr from config)")

	return cmd
}

// blobStore is the bucket when one is configured, otherwise an in-memory store
func (app *AppContext) blobStore() (blob.Store, error) {
	if app.Cfg.StorageBucket == "" {
		app.Logger.Warn("storageBucket not configured; uploads are kept in memory")
		return memblob.New(fmt.Sprintf("http://localhost%s/blobs", app.Cfg.HTTPAddr)), nil
	}
	return app.StorageClient()
}

// listenForChanges republishes writes made by other processes, such as the CLI
func listenForChanges(ctx context.Context, app *AppContext, bus *live.Bus) {
	if err := postgres.Listen(ctx, app.Secrets.DatabaseURL, bus, app.Logger); err != nil && ctx.Err() == nil {
		app.Logger.Error("Change listener stopped", zap.Error(err))
	}
}
