// Command dev_token mints a bearer token for a user, signed with the
// configured JWT_SECRET and JWT_ISSUER. Sign-in lives with the identity
// provider, so this is how operators get a token for smoke tests and
// local development.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/SscSPs/team_finance_engine/internal/platform/config"
	"github.com/SscSPs/team_finance_engine/internal/utils"
)

func main() {
	userID := flag.String("user", "", "user ID to place in the token subject")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *userID == "" {
		logger.Error("Missing -user flag")
		os.Exit(2)
	}
	if *ttl <= 0 {
		logger.Error("Token lifetime must be positive", slog.Duration("ttl", *ttl))
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	token, err := utils.GenerateJWT(*userID, cfg.JWTSecret, *ttl, cfg.JWTIssuer)
	if err != nil {
		logger.Error("Failed to sign token", slog.String("error", err.Error()))
		os.Exit(1)
	}
	fmt.Println(token)
}
