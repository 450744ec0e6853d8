// internal/docker/push.go
//
// Registry session handling. buildx pushes as part of the build, so all that
// is left here is logging in before the batch and out after it.

package docker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"imgpub/internal/credentials"
	"imgpub/internal/executil"
)

// Login authenticates docker against registry. The token is fed on stdin so
// it never shows up in the process list or the echoed command.
func Login(ctx context.Context, r executil.Runner, registry string, creds credentials.Credentials) error {
	if strings.TrimSpace(registry) == "" {
		return errors.New("docker login: registry is empty")
	}
	if creds.Username == "" || creds.Token == "" {
		return errors.New("docker login: missing username or token")
	}
	err := r.Run(ctx, executil.Cmd{
		Name:  "docker",
		Args:  []string{"login", registry, "--username", creds.Username, "--password-stdin"},
		Stdin: strings.NewReader(creds.Token),
	})
	if err != nil {
		return fmt.Errorf("docker login to %s failed: %w", registry, err)
	}
	return nil
}

// Logout runs docker logout. Failures only warrant a warning.
func Logout(ctx context.Context, r executil.Runner, registry string) error {
	if err := r.Run(ctx, executil.Cmd{Name: "docker", Args: []string{"logout", registry}}); err != nil {
		return fmt.Errorf("docker logout failed: %w", err)
	}
	return nil
}
