package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taqnia-dev/adminctl/internal/cli/app"
)

// AppLoader builds the app once global flags are parsed.
// Tests return a prebuilt app wired to a fake backend.
type AppLoader func() (*app.App, error)

// readInput returns the payload given with --data, or read from --file.
// A file of "-" reads stdin.
func readInput(stdin io.Reader, data, file string) ([]byte, error) {
	switch {
	case data != "" && file != "":
		return nil, fmt.Errorf("use either --data or --file, not both")
	case data != "":
		return []byte(data), nil
	case file == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return b, nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("input is required (use --data or --file)")
}

// decodeInput parses a YAML or JSON document into T using T's json field
// names. Unknown fields are rejected.
func decodeInput[T any](raw []byte) (T, error) {
	var out T

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return out, fmt.Errorf("failed to parse input: %w", err)
	}
	if doc == nil {
		return out, fmt.Errorf("input is empty")
	}
	if _, ok := doc.(map[string]any); !ok {
		return out, fmt.Errorf("input must be an object")
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return out, fmt.Errorf("failed to parse input: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(encoded))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, fmt.Errorf("invalid input: %s", strings.TrimPrefix(err.Error(), "json: "))
	}
	return out, nil
}

func plural(n int, singular, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, many)
}
