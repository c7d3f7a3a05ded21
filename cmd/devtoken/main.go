// Command devtoken mints a bearer token for local development. It signs
// with the same AUTH_SIGNING_SECRET and AUTH_ISSUER the server reads.
//
//	AUTH_SIGNING_SECRET=dev go run ./cmd/devtoken -user alice
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/auth"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/config"
)

var (
	userID = flag.String("user", "", "user id to put in the token subject")
	ttl    = flag.Duration("ttl", 24*time.Hour, "token lifetime")
)

func main() {
	flag.Parse()

	var cfg config.Auth
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "AUTH_"}); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if cfg.SigningSecret == "" {
		fmt.Fprintln(os.Stderr, "AUTH_SIGNING_SECRET is required")
		os.Exit(1)
	}

	token, err := auth.NewTokens(cfg.SigningSecret, cfg.Issuer).Issue(*userID, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
