package main

import (
	"fmt"
	"time"

	echoapi "github.com/coursebox/backend/apps/api/echo"
)

// token mints a bearer token for email, signed with the configured secret. Handy in development,
// where no identity provider issues tokens.
func (cli *commandLine) token(email, name string) error {
	claims := echoapi.NewClaims(cli.conf, email, name)
	token, err := echoapi.GenerateToken(claims, cli.conf.SecretKey)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, token)
	fmt.Fprintf(cli.out, "expires: %s\n", time.Unix(claims.ExpiresAt, 0).UTC().Format(time.RFC3339))
	return nil
}
