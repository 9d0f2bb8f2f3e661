package yamltuning

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"dominion/internal/app/ports"

	"gopkg.in/yaml.v3"
)

var ErrInvalidTuningPath = errors.New("invalid tuning filepath")

// Provider loads catalog overrides from a YAML file under Root. An empty
// File means no overrides.
type Provider struct {
	Root string
	File string
}

func (p Provider) Load(_ context.Context) (ports.Tuning, error) {
	if strings.TrimSpace(p.File) == "" {
		return ports.Tuning{}, nil
	}
	path, err := secureJoin(p.Root, p.File)
	if err != nil {
		return ports.Tuning{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return ports.Tuning{}, fmt.Errorf("read tuning: %w", err)
	}
	return Decode(b)
}

// Decode rejects unknown keys so a typo cannot silently leave a default in place.
func Decode(b []byte) (ports.Tuning, error) {
	var t ports.Tuning
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return ports.Tuning{}, fmt.Errorf("decode tuning: %w", err)
	}
	return t, nil
}

func secureJoin(root, rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" || filepath.IsAbs(rel) {
		return "", ErrInvalidTuningPath
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	target := filepath.Clean(filepath.Join(rootAbs, rel))
	prefix := rootAbs + string(filepath.Separator)
	if target != rootAbs && !strings.HasPrefix(target, prefix) {
		return "", ErrInvalidTuningPath
	}
	return target, nil
}
