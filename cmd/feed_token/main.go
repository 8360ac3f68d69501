// Command feed_token mints a shared secret for the bank feed import endpoint.
// The plaintext goes to the feed operator, the hash goes into FEED_TOKEN_HASH.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/SscSPs/team_finance_engine/internal/utils"
)

func main() {
	size := flag.Int("bytes", 32, "number of random bytes in the token")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	token, err := utils.GenerateSecureRandomString(*size)
	if err != nil {
		logger.Error("Failed to generate feed token", slog.String("error", err.Error()))
		os.Exit(1)
	}
	hash, err := utils.HashToken(token)
	if err != nil {
		logger.Error("Failed to hash feed token", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("FEED_TOKEN=%s\n", token)
	fmt.Printf("FEED_TOKEN_HASH=%s\n", hash)
}
