package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"forecast-vintage-api/internal/model"
)

// File is the layout of a credentials seed file:
//
//	credentials:
//	  - username: root
//	    auth_key: change-me
//	    auth_level: admin
//	    is_active: true
type File struct {
	Credentials []Entry `yaml:"credentials"`
}

type Entry struct {
	Username string `yaml:"username"`
	AuthKey  string `yaml:"auth_key"`
	Role     string `yaml:"auth_level"`
	IsActive *bool  `yaml:"is_active"`
}

type credentialCreator interface {
	Create(ctx context.Context, actor model.AuditActor, input model.NewCredential) (model.CreatedCredential, error)
}

// Parse decodes a seed file. Unknown keys are rejected so that typos do not
// silently produce accounts with default settings.
func Parse(data []byte) (File, error) {
	var f File

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("decode seed file: %w", err)
	}

	for i, entry := range f.Credentials {
		if strings.TrimSpace(entry.Username) == "" {
			return File{}, fmt.Errorf("seed entry %d: username is required", i)
		}
		if entry.AuthKey == "" {
			return File{}, fmt.Errorf("seed entry %d (%s): auth_key is required", i, entry.Username)
		}
	}

	return f, nil
}

// Apply creates every credential of the file that does not exist yet and
// returns how many were created.
func Apply(ctx context.Context, creator credentialCreator, f File) (int, error) {
	actor := model.AuditActor{Username: "seed"}
	created := 0

	for _, entry := range f.Credentials {
		_, err := creator.Create(ctx, actor, model.NewCredential{
			Username: entry.Username,
			AuthKey:  entry.AuthKey,
			Role:     entry.Role,
			IsActive: entry.IsActive,
		})
		if errors.Is(err, model.ErrDuplicateUsername) {
			slog.Debug("seed credential exists", "username", entry.Username)
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed credential %s: %w", entry.Username, err)
		}
		created++
	}

	return created, nil
}

// FromFile reads path and applies it.
func FromFile(ctx context.Context, creator credentialCreator, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	f, err := Parse(data)
	if err != nil {
		return 0, err
	}

	return Apply(ctx, creator, f)
}
