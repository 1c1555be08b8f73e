package gate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/uvensys/agentgate"
	"github.com/uvensys/agentgate/lib/generator"
)

var (
	ErrNoSecret          = errors.New("gate: config supplies no secret")
	ErrUnknownDifficulty = errors.New("gate: config names an unknown difficulty tier")
	ErrUnknownConfigType = errors.New("gate: config lists an unregistered challenge type")
)

// FileConfig is the on-disk configuration surface. Either secret or
// secret_file must be set; everything else has defaults.
type FileConfig struct {
	Secret     string   `yaml:"secret"`
	SecretFile string   `yaml:"secret_file"`
	Difficulty string   `yaml:"difficulty"`
	TTLSeconds int      `yaml:"ttl_seconds"`
	Types      []string `yaml:"types"`
	Persistent *bool    `yaml:"persistent"`
	AgentID    string   `yaml:"agent_id"`
}

// LoadConfig reads a yaml config file and resolves it into gate Options,
// cross-checking every named challenge type against the generator registry so
// a typo fails at startup instead of emptying the pool at runtime.
func LoadConfig(fname string) (Options, error) {
	fin, err := os.Open(fname)
	if err != nil {
		return Options{}, fmt.Errorf("gate: can't open config file %s: %w", fname, err)
	}
	defer fin.Close()

	return ParseConfig(fin, fname)
}

func ParseConfig(fin io.Reader, fname string) (Options, error) {
	var fc FileConfig
	dec := yaml.NewDecoder(fin)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return Options{}, fmt.Errorf("gate: can't parse config file %s: %w", fname, err)
	}

	secret := fc.Secret
	if fc.SecretFile != "" {
		raw, err := os.ReadFile(fc.SecretFile)
		if err != nil {
			return Options{}, fmt.Errorf("gate: can't read secret file: %w", err)
		}
		secret = strings.TrimSpace(string(raw))
	}
	if secret == "" {
		return Options{}, fmt.Errorf("%w (%s)", ErrNoSecret, fname)
	}
	if len(secret) < agentgate.MinSecretLen {
		return Options{}, fmt.Errorf("gate: secret in %s is shorter than %d characters", fname, agentgate.MinSecretLen)
	}

	if fc.Difficulty != "" {
		if _, ok := generator.Tiers[fc.Difficulty]; !ok {
			return Options{}, fmt.Errorf("%w: %q", ErrUnknownDifficulty, fc.Difficulty)
		}
	}

	var validationErrs []error
	for _, name := range fc.Types {
		if _, ok := generator.Get(name); !ok {
			validationErrs = append(validationErrs, fmt.Errorf("%w: %q", ErrUnknownConfigType, name))
		}
	}
	if len(validationErrs) != 0 {
		return Options{}, fmt.Errorf("gate: can't do final validation of %s: %w", fname, errors.Join(validationErrs...))
	}

	persistent := true
	if fc.Persistent != nil {
		persistent = *fc.Persistent
	}

	return Options{
		Secret:     secret,
		Difficulty: fc.Difficulty,
		TTL:        time.Duration(fc.TTLSeconds) * time.Second,
		Types:      fc.Types,
		Persistent: persistent,
		AgentID:    fc.AgentID,
	}, nil
}
