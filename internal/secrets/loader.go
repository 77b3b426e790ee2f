package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a credential comes from.
type Source struct {
	// Name is used in error messages, e.g. "api token".
	Name string
	// Value is an inline value from configuration or flags.
	Value string
	// File points to a file holding the value. It wins over Value.
	File string
	// Optional makes an unconfigured source resolve to an empty string.
	// A configured but empty file is still an error.
	Optional bool
}

// Load resolves the source into a trimmed value.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}

		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" && !src.Optional {
		return "", fmt.Errorf("%s is not configured", name)
	}

	return secret, nil
}
