package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"perch/config"
	"perch/server"
	"perch/session"
	"perch/twitter"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the perch dashboard API",
		Description: `Starts the perch HTTP server.

Exposes the OAuth2 login endpoints and the analytics API consumed by the
dashboard frontend. Nothing is persisted between requests; every analytics
response is recomputed from a fresh fetch against the X API.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "client-id",
				Usage:    "OAuth2 client id of the X API app",
				EnvVars:  []string{"PERCH_CLIENT_ID"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "client-secret",
				Usage:    "OAuth2 client secret of the X API app",
				EnvVars:  []string{"PERCH_CLIENT_SECRET"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "callback-url",
				Usage:   "OAuth2 callback URL registered with the provider",
				EnvVars: []string{"PERCH_CALLBACK_URL"},
				Value:   "http://localhost:5001/auth/twitter/callback",
			},
			&cli.StringFlag{
				Name:    "frontend-url",
				Usage:   "Origin of the dashboard frontend, used for CORS and redirects",
				EnvVars: []string{"PERCH_FRONTEND_URL"},
				Value:   "http://localhost:3000",
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "Port to listen on",
				EnvVars: []string{"PERCH_PORT"},
				Value:   5001,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the pipeline tuning configuration file",
				EnvVars: []string{"PERCH_CONFIG"},
			},
			&cli.BoolFlag{
				Name:    "secure-cookies",
				Usage:   "Mark session cookies as Secure (requires HTTPS)",
				EnvVars: []string{"PERCH_SECURE_COOKIES"},
			},
		},
		Action: func(ctx *cli.Context) error {
			tuning, err := config.LoadConfig(ctx.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			app := server.Server(&server.ServerConfig{
				OAuth: twitter.NewOAuthConfig(
					ctx.String("client-id"),
					ctx.String("client-secret"),
					ctx.String("callback-url"),
				),
				FrontendURL: ctx.String("frontend-url"),
				Tuning:      tuning,
				Sessions:    session.NewCookieStore(ctx.Bool("secure-cookies")),
			})

			// Graceful shutdown
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)
			go func() {
				<-c
				log.Info("Gracefully shutting down...")
				if err := app.ShutdownWithTimeout(60 * time.Second); err != nil {
					log.Errorf("Failed to shut down server: %v", err)
				}
			}()

			log.WithFields(log.Fields{
				"port": ctx.Int("port"),
			}).Info("Starting server")

			if err := app.Listen(fmt.Sprintf(":%d", ctx.Int("port"))); err != nil {
				return fmt.Errorf("server stopped: %w", err)
			}
			return nil
		},
	}
}
