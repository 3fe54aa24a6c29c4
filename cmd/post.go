package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cqroot/prompt"
	"github.com/cqroot/prompt/input"
	"github.com/urfave/cli/v2"

	"perch/twitter"
)

// postCmd publishes a single post from the terminal, useful for testing an
// access token without going through the dashboard.
func postCmd() *cli.Command {
	return &cli.Command{
		Name:  "post",
		Usage: "Publish a post on X from the terminal",
		Description: `Publishes a single post on X on behalf of a user.

Requires a user access token obtained through the OAuth2 login flow with the
tweet.write scope. Prompts for the post text interactively.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "access-token",
				Usage:   "OAuth2 user access token",
				EnvVars: []string{"PERCH_ACCESS_TOKEN"},
			},
		},
		Action: func(ctx *cli.Context) error {
			token := ctx.String("access-token")
			if token == "" {
				var err error
				token, err = prompt.New().Ask("Access token:").Input("", input.WithEchoMode(input.EchoNone))
				if err != nil {
					return err
				}
			}

			text, err := prompt.New().Ask("Post text:").Input("What's happening?")
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("post text must not be empty")
			}

			client := twitter.NewClient(token)
			tweet, err := client.PostTweet(ctx.Context, text)
			if err != nil {
				return fmt.Errorf("could not publish post: %w", err)
			}

			fmt.Println("Published post...", tweet.ID)
			return nil
		},
	}
}
