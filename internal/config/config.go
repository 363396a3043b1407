// Package config resolves client settings from the config file, the
// environment and command-line overrides, in increasing precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gastownhall/trustscore/internal/xdg"
	"github.com/go-playground/validator/v10"
)

// Defaults applied when nothing else sets a value.
const (
	DefaultAPIBase      = "http://localhost:8080"
	DefaultPollInterval = 800 * time.Millisecond
	DefaultMaxAttempts  = 750 // ten minutes at the default interval
)

// Config keys accepted by Get and Set.
const (
	KeyAPIBase      = "api-base"
	KeyPollInterval = "poll-interval"
	KeyMaxAttempts  = "max-attempts"
)

// ErrUnknownKey is returned for keys outside Keys().
var ErrUnknownKey = errors.New("unknown config key")

// File is the persisted configuration. Empty fields fall through to the
// environment and defaults.
type File struct {
	APIBase      string `json:"api_base,omitempty"`
	PollInterval string `json:"poll_interval,omitempty"`
	MaxAttempts  *int   `json:"max_attempts,omitempty"`
}

// Settings is the fully resolved configuration.
type Settings struct {
	APIBase      string        `validate:"required,http_url"`
	PollInterval time.Duration `validate:"gt=0"`
	MaxAttempts  int           `validate:"gte=0"` // 0 polls until done
}

// Overrides carries flag values; zero values mean "not set".
type Overrides struct {
	APIBase string
}

// Keys returns the supported config keys in sorted order.
func Keys() []string {
	keys := []string{KeyAPIBase, KeyPollInterval, KeyMaxAttempts}
	sort.Strings(keys)
	return keys
}

// Path returns the config file location.
func Path() string {
	return filepath.Join(xdg.ConfigDir(), "config.json")
}

// Store reads and writes the config file.
type Store struct {
	path string
}

// NewStore returns a Store at the default path.
func NewStore() *Store { return &Store{path: Path()} }

// NewStoreAt returns a Store at path.
func NewStoreAt(path string) *Store { return &Store{path: path} }

// Load reads the config file. A missing file yields an empty File.
func (s *Store) Load() (*File, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return &f, nil
}

// Save writes f atomically.
func (s *Store) Save(f *File) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

// Get returns the file's raw value for key ("" when unset).
func (f *File) Get(key string) (string, error) {
	switch key {
	case KeyAPIBase:
		return f.APIBase, nil
	case KeyPollInterval:
		return f.PollInterval, nil
	case KeyMaxAttempts:
		if f.MaxAttempts == nil {
			return "", nil
		}
		return strconv.Itoa(*f.MaxAttempts), nil
	default:
		return "", fmt.Errorf("%w %q (supported: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
}

// Set validates value and stores it under key.
func (f *File) Set(key, value string) error {
	switch key {
	case KeyAPIBase:
		if err := validate().Var(value, "required,http_url"); err != nil {
			return fmt.Errorf("invalid %s %q: expected an http(s) URL", key, value)
		}
		f.APIBase = strings.TrimRight(value, "/")
	case KeyPollInterval:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid %s %q: expected a positive duration such as 800ms", key, value)
		}
		f.PollInterval = value
	case KeyMaxAttempts:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid %s %q: expected a non-negative integer", key, value)
		}
		f.MaxAttempts = &n
	default:
		return fmt.Errorf("%w %q (supported: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
	return nil
}

// Resolve layers defaults, f, the TRUST_* environment and o, then validates
// the result. f may be nil.
func Resolve(f *File, o Overrides) (Settings, error) {
	s := Settings{
		APIBase:      DefaultAPIBase,
		PollInterval: DefaultPollInterval,
		MaxAttempts:  DefaultMaxAttempts,
	}
	if f == nil {
		f = &File{}
	}

	if f.APIBase != "" {
		s.APIBase = f.APIBase
	}
	if f.PollInterval != "" {
		d, err := time.ParseDuration(f.PollInterval)
		if err != nil {
			return s, fmt.Errorf("config %s: %w", KeyPollInterval, err)
		}
		s.PollInterval = d
	}
	if f.MaxAttempts != nil {
		s.MaxAttempts = *f.MaxAttempts
	}

	if v := strings.TrimSpace(os.Getenv("TRUST_API_BASE")); v != "" {
		s.APIBase = v
	}
	if v := strings.TrimSpace(os.Getenv("TRUST_POLL_INTERVAL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return s, fmt.Errorf("TRUST_POLL_INTERVAL: %w", err)
		}
		s.PollInterval = d
	}
	if v := strings.TrimSpace(os.Getenv("TRUST_MAX_ATTEMPTS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return s, fmt.Errorf("TRUST_MAX_ATTEMPTS: %w", err)
		}
		s.MaxAttempts = n
	}

	if o.APIBase != "" {
		s.APIBase = o.APIBase
	}
	s.APIBase = strings.TrimRight(s.APIBase, "/")

	if err := validate().Struct(s); err != nil {
		return s, fmt.Errorf("invalid settings: %w", describe(err))
	}
	return s, nil
}

var (
	vOnce sync.Once
	v     *validator.Validate
)

func validate() *validator.Validate {
	vOnce.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
	})
	return v
}

// describe flattens validator errors into "Field: tag" pairs.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s fails %q (got %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return errors.New(strings.Join(parts, "; "))
}
