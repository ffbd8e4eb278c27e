package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/valter-silva-au/adorep/pkg/models"
)

// ErrMissingCredential is returned when neither the environment variable nor
// the secret file yields a token. The CLI exits with code 2 on it.
var ErrMissingCredential = errors.New("missing Azure DevOps personal access token")

// CredentialSource resolves the personal access token used for every call.
type CredentialSource interface {
	Token() (string, error)
}

type envFileCredentialSource struct {
	envVar     string
	secretFile string
	getenv     func(string) string
	readFile   func(string) ([]byte, error)
	homeDir    func() (string, error)
}

// NewCredentialSource looks up the token in the configured environment
// variable first, then in the secret file.
func NewCredentialSource(cfg models.CredentialConfig) CredentialSource {
	return &envFileCredentialSource{
		envVar:     cfg.EnvVar,
		secretFile: cfg.SecretFile,
		getenv:     os.Getenv,
		readFile:   os.ReadFile,
		homeDir:    os.UserHomeDir,
	}
}

func (s *envFileCredentialSource) Token() (string, error) {
	if s.envVar != "" {
		if tok := strings.TrimSpace(s.getenv(s.envVar)); tok != "" {
			return tok, nil
		}
	}

	if s.secretFile != "" {
		path, err := expandHome(s.secretFile, s.homeDir)
		if err != nil {
			return "", fmt.Errorf("resolving secret file path: %w", err)
		}
		data, err := s.readFile(path)
		switch {
		case err == nil:
			if tok := strings.TrimSpace(string(data)); tok != "" {
				return tok, nil
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return "", fmt.Errorf("reading secret file %s: %w", path, err)
		}
	}

	return "", fmt.Errorf("%w: %s not set and %s not found", ErrMissingCredential, s.envVar, s.secretFile)
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string, homeDir func() (string, error)) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
