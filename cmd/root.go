package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "perch",
		Usage: "An analytics dashboard backend for X (Twitter)",
		Description: `An OAuth2-authenticated backend for an X (Twitter) analytics
		dashboard.

		Perch signs users in with the authorization-code-with-PKCE flow,
		fetches their recent posts page by page from the X API, ranks them
		by an engagement metric and rolls them up into monthly engagement
		buckets for the dashboard frontend.

		Flags can generally be set via environment variables, e.g.:

		--client-id => PERCH_CLIENT_ID=abc123
		--port => PERCH_PORT=5001
		`,
		Commands: []*cli.Command{
			serveCmd(),
			postCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func Execute() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
