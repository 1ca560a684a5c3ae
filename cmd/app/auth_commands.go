package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/authgate/cmd/app/commands"
	"github.com/allisson/authgate/internal/app"
	"github.com/allisson/authgate/internal/config"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-user",
			Usage: "Create a login user with a role from the role catalog",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "username",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Login name, used as the token subject",
				},
				&cli.StringFlag{
					Name:     "role",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Role name (e.g., admin, operator, viewer)",
				},
				&cli.BoolFlag{
					Name:  "prompt-password",
					Value: false,
					Usage: "Read the password from stdin instead of generating one",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				userUseCase, err := container.UserUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateUser(
					ctx,
					userUseCase,
					container.Logger(),
					cmd.String("username"),
					cmd.String("role"),
					cmd.Bool("prompt-password"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "unlock-user",
			Usage: "Clear failed login attempts and any lockout for a user",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "username",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Login name",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				userUseCase, err := container.UserUseCase()
				if err != nil {
					return err
				}

				return commands.RunUnlockUser(
					ctx,
					userUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("username"),
				)
			},
		},
	}
}
