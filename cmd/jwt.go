package main

import (
	"context"
	"finder/internal/config"
	"finder/pkg/logger"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// JWTCommand constructs the 'jwt' subcommand that generates a signed RS256
// bearer token for the API, for a given subject and TTL, using the configured
// private key or the one read from --key-file.
func JWTCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jwt",
		Short: "Generates an API bearer token for the given subject",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			subject, _ := cmd.Flags().GetString("subject")
			TTL, _ := cmd.Flags().GetDuration("ttl")
			keyFile, _ := cmd.Flags().GetString("key-file")

			pemKey := []byte(cfg.JWT.PrivateKey)
			if keyFile != "" {
				var err error
				if pemKey, err = os.ReadFile(keyFile); err != nil {
					logger.Fatal(ctx, "could not read private key file", zap.String("path", keyFile), zap.Error(err))
				}
			}

			key, err := jwt.ParseRSAPrivateKeyFromPEM(pemKey)
			if err != nil {
				logger.Fatal(ctx, "could not parse RSA private key", zap.Error(err))
			}

			now := time.Now()
			claims := jwt.RegisteredClaims{
				Subject:   subject,
				ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
				IssuedAt:  jwt.NewNumericDate(now),
				NotBefore: jwt.NewNumericDate(now),
			}
			token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
			signed, err := token.SignedString(key)
			if err != nil {
				logger.Fatal(ctx, "could not sign JWT", zap.Error(err))
			}

			fmt.Println(signed) //nolint: forbidigo
		},
	}

	cmd.Flags().String("subject", "", "JWT subject (e.g., team or client name)")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token TTL (e.g., 30s, 15m, 1h)")
	cmd.Flags().String("key-file", "", "PEM encoded RSA private key, overrides jwt.privateKey")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
