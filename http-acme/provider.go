package http_acme

import (
	"errors"
	"fmt"
	"github.com/1f349/acme-redirect/logger"
	"github.com/cyphar/filepath-securejoin"
	"github.com/go-acme/lego/v4/challenge"
	"github.com/go-acme/lego/v4/challenge/http01"
	"io/fs"
	"os"
	"path/filepath"
)

// ChallsDir is the directory inside the challenge directory which holds the
// challenge proof files
const ChallsDir = "challs"

var ErrInvalidToken = errors.New("invalid challenge token")

var _ challenge.Provider = &ChallDirProvider{}

// ChallDirProvider writes HTTP-01 challenge proofs into the challenge
// directory where the daemon serves them from
type ChallDirProvider struct {
	dir string
}

// NewChallDirProvider creates a ChallDirProvider for the challenge directory
// challDir, proofs are stored in the `challs` subdirectory
func NewChallDirProvider(challDir string) *ChallDirProvider {
	return &ChallDirProvider{dir: filepath.Join(challDir, ChallsDir)}
}

// ChallengePath returns the request path the daemon serves token at
func ChallengePath(token string) string {
	return http01.ChallengePath(token)
}

// Present implements challenge.Provider and writes keyAuth to the proof file
// for token
func (c *ChallDirProvider) Present(domain, token, keyAuth string) error {
	path, err := c.proofPath(token)
	if err != nil {
		return err
	}
	err = os.MkdirAll(c.dir, 0755)
	if err != nil {
		return fmt.Errorf("failed to create challenge directory: %w", err)
	}
	logger.Logger.Debug("Writing challenge proof", "domain", domain, "path", path)
	err = os.WriteFile(path, []byte(keyAuth), 0644)
	if err != nil {
		return fmt.Errorf("failed to write challenge proof: %w", err)
	}
	return nil
}

// CleanUp implements challenge.Provider and removes the proof file for token
func (c *ChallDirProvider) CleanUp(domain, token, _ string) error {
	path, err := c.proofPath(token)
	if err != nil {
		return err
	}
	logger.Logger.Debug("Removing challenge proof", "domain", domain, "path", path)
	err = os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove challenge proof: %w", err)
	}
	return nil
}

func (c *ChallDirProvider) proofPath(token string) (string, error) {
	if !ValidToken(token) {
		return "", fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}
	return securejoin.SecureJoin(c.dir, token)
}
