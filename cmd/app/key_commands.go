package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/authgate/cmd/app/commands"
	"github.com/allisson/authgate/internal/app"
	authService "github.com/allisson/authgate/internal/auth/service"
	"github.com/allisson/authgate/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "generate-keypair",
			Usage: "Generate an RSA signing key pair as PEM files",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "bits",
					Aliases: []string{"b"},
					Value:   3072,
					Usage:   "RSA modulus size in bits (minimum 2048)",
				},
				&cli.StringFlag{
					Name:  "private-key",
					Value: "keys/private.pem",
					Usage: "Output path of the private key",
				},
				&cli.StringFlag{
					Name:  "public-key",
					Value: "keys/public.pem",
					Usage: "Output path of the public key",
				},
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "Encrypt the private key with this KMS key (e.g., base64key://, gcpkms://...)",
				},
				&cli.BoolFlag{
					Name:  "force",
					Value: false,
					Usage: "Overwrite existing key files",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunGenerateKeyPair(
					ctx,
					authService.NewKMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					commands.GenerateKeyPairOptions{
						Bits:           int(cmd.Int("bits")),
						PrivateKeyPath: cmd.String("private-key"),
						PublicKeyPath:  cmd.String("public-key"),
						KMSKeyURI:      cmd.String("kms-key-uri"),
						Force:          cmd.Bool("force"),
					},
				)
			},
		},
		{
			Name:  "inspect-token",
			Usage: "Verify a token offline with the public key and print its claims",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "token",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Token to inspect",
				},
				&cli.StringFlag{
					Name:  "public-key",
					Value: "",
					Usage: "Public key path (defaults to AUTH_PUBLIC_KEY_PATH)",
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

				publicKeyPath := cmd.String("public-key")
				if publicKeyPath == "" {
					publicKeyPath = cfg.AuthPublicKeyPath
				}

				return commands.RunInspectToken(
					commands.DefaultIO().Writer,
					publicKeyPath,
					cfg.AuthTokenIssuer,
					cmd.String("token"),
					cmd.String("format"),
				)
			},
		},
	}
}
