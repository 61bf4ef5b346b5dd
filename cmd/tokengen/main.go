// Command tokengen prints access tokens the mock API accepts, for poking at it
// with curl. The signing key and lifetime default to the mock API's own
// settings, so MOCKAPI_JWT_SIGNING_KEY and MOCKAPI_TOKEN_TTL apply here too.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"pawhub/internal/mockapi"
	"pawhub/internal/models"
	"pawhub/internal/platform/config"
)

const usage = `usage: tokengen <admin|user> [-id N] [-ttl D] [-key K] [-json]

Tokens are signed with the mock API development key and are useless anywhere else.`

type output struct {
	Token     string             `json:"token"`
	Kind      models.SessionKind `json:"kind"`
	ProfileID int64              `json:"profile_id"`
	ExpiresAt time.Time          `json:"expires_at"`
}

func main() {
	cfg, err := config.LoadMockAPI()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := run(os.Args[1:], cfg, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
		}
		os.Exit(2)
	}
}

var errUsage = errors.New("tokengen: expected admin or user")

func run(args []string, cfg *config.MockAPI, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	var profile models.Profile
	kind := models.SessionKind(args[0])
	switch kind {
	case models.SessionAdmin:
		profile.Role = "superadmin"
	case models.SessionUser:
		profile.Role = "user"
	default:
		return errUsage
	}

	fs := flag.NewFlagSet("tokengen "+args[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	id := fs.Int64("id", 1, "profile id")
	ttl := fs.Duration("ttl", cfg.TokenTTL, "token lifetime")
	key := fs.String("key", cfg.JWTSigningKey, "signing key")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	profile.ID = *id
	profile.IsActive = true

	token, err := mockapi.NewTokenService(*key, *ttl).Issue(kind, profile)
	if err != nil {
		return err
	}
	if !*asJSON {
		_, err = fmt.Fprintln(out, token)
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(output{
		Token:     token,
		Kind:      kind,
		ProfileID: profile.ID,
		ExpiresAt: time.Now().Add(*ttl).UTC().Truncate(time.Second),
	})
}
