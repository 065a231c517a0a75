package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for folio.
type Config struct {
	BaseDir   string `toml:"base_dir"`
	LogDir    string `toml:"log_dir"`
	LogFormat string `toml:"log_format"` // "text" (default) or "json"
	LogLevel  string `toml:"log_level"`  // "debug", "info" (default), "warn" or "error"

	Medium     MediumConfig     `toml:"medium"`
	Encryption EncryptionConfig `toml:"encryption"`
	Latency    LatencyConfig    `toml:"latency"`
	Notify     NotifyConfig     `toml:"notify"`
	Search     SearchConfig     `toml:"search"`
	Contact    ContactConfig    `toml:"contact"`

	SeedProjects []SeedProject `toml:"seed_projects,omitempty"`
}

// Duration is a time.Duration written as a string ("500ms", "30s") in TOML.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MediumConfig selects the durable key-value medium.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type MediumConfig struct {
	Type string `toml:"type"` // "memory", "filesystem", "sqlite", "redis" or "s3"

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`

	// SQLite-specific fields (only used when Type == "sqlite")
	SQLitePath string `toml:"sqlite_path,omitempty"`

	// Redis-specific fields (only used when Type == "redis")
	RedisAddr     string `toml:"redis_addr,omitempty"`
	RedisPassword string `toml:"redis_password,omitempty"`
	RedisDB       int    `toml:"redis_db,omitempty"`
	RedisPrefix   string `toml:"redis_prefix,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
}

// EncryptionConfig controls sealing of stored documents.
type EncryptionConfig struct {
	Type         string `toml:"type"` // "none" (default), "age" or "test"
	IdentityPath string `toml:"identity_path,omitempty"`
}

// LatencyConfig holds the simulated delay of each service operation class.
type LatencyConfig struct {
	Fetch  Duration `toml:"fetch"`
	Save   Duration `toml:"save"`
	Delete Duration `toml:"delete"`
	Submit Duration `toml:"submit"`
	Status Duration `toml:"status"`
}

// NotifyConfig holds the unread poller settings.
type NotifyConfig struct {
	Interval Duration `toml:"interval"`

	// Permission is the initial notification permission:
	// "granted", "denied" or "default" (ask on first start).
	Permission string `toml:"permission"`

	// AssumeFocused reports the application as being in the foreground,
	// which suppresses notifications.
	AssumeFocused bool `toml:"assume_focused"`
}

// SearchConfig holds the interactive search settings.
type SearchConfig struct {
	QuietPeriod Duration `toml:"quiet_period"`
}

// ContactConfig holds the contact submission settings.
type ContactConfig struct {
	// SubmitsPerMinute limits contact submissions; 0 disables the limit.
	SubmitsPerMinute float64 `toml:"submits_per_minute"`
	SubmitBurst      int     `toml:"submit_burst"`
}

// SeedProject is a project served when no project collection is stored yet.
type SeedProject struct {
	ID           string    `toml:"id"`
	Title        string    `toml:"title"`
	Description  string    `toml:"description"`
	Technologies []string  `toml:"technologies"`
	LiveURL      string    `toml:"live_url,omitempty"`
	GithubURL    string    `toml:"github_url,omitempty"`
	ProjectImage string    `toml:"project_image,omitempty"`
	BannerImage  string    `toml:"banner_image,omitempty"`
	CreatedAt    time.Time `toml:"created_at"`
}

// NewConfig creates a new Config rooted at baseDir with default settings.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir:   baseDir,
		LogDir:    filepath.Join(baseDir, "log"),
		LogFormat: "text",
		LogLevel:  "info",
		Medium: MediumConfig{
			Type:   "filesystem",
			FSRoot: filepath.Join(baseDir, "data"),
		},
		Encryption: EncryptionConfig{
			Type:         "none",
			IdentityPath: filepath.Join(baseDir, "keys", "folio.key"),
		},
		Latency: LatencyConfig{
			Fetch:  Duration(500 * time.Millisecond),
			Save:   Duration(800 * time.Millisecond),
			Delete: Duration(500 * time.Millisecond),
			Submit: Duration(1000 * time.Millisecond),
			Status: Duration(300 * time.Millisecond),
		},
		Notify: NotifyConfig{
			Interval:   Duration(30 * time.Second),
			Permission: "default",
		},
		Search: SearchConfig{
			QuietPeriod: Duration(300 * time.Millisecond),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
