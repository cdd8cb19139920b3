package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read when no --config flag is given.
const DefaultConfigPath = "config.yaml"

// Config holds runtime options for building the app. It mirrors the YAML
// layout shared by the lab services.
type Config struct {
	Lab     LabConfig     `yaml:"lab"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`

	// IdentityPassphrase unlocks the identity store. It is only ever read
	// from the environment.
	IdentityPassphrase string `yaml:"-"`
}

// LabConfig is the lab-wide section; only the secret channel is served here.
type LabConfig struct {
	SecretChannel SecretChannelConfig `yaml:"secret_channel"`
}

// SecretChannelConfig configures the handshake service.
type SecretChannelConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Challenge ChallengeConfig `yaml:"challenge"`
	Identity  IdentityConfig  `yaml:"identity"`
}

// ServerConfig covers the listener and key sizes.
type ServerConfig struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	RSAKeySize       int    `yaml:"rsa_key_size"`
	DHKeySize        int    `yaml:"dh_key_size"`
	GenerateDHParams bool   `yaml:"generate_dh_params"`
}

// ChallengeConfig is the plaintext delivered at the end of a handshake.
type ChallengeConfig struct {
	Text string `yaml:"text"`
	Flag string `yaml:"flag"`
}

// IdentityConfig enables the encrypted identity store when StoreDir is set.
type IdentityConfig struct {
	StoreDir string `yaml:"store_dir"`
}

// LogConfig selects logrus level and formatter.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// Default returns a default configuration. The flag has no default.
func Default() Config {
	return Config{
		Lab: LabConfig{SecretChannel: SecretChannelConfig{
			Server: ServerConfig{
				Host:       "0.0.0.0",
				Port:       8000,
				RSAKeySize: 2048,
				DHKeySize:  2048,
			},
			Challenge: ChallengeConfig{
				Text: "Congratulations, you established a secret channel",
			},
		}},
		Log:     LogConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load reads path, applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an injectable environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg, err := ReadWithEnv(path, lookup)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read is Load without validation, for commands that only need part of the
// configuration.
func Read(path string) (Config, error) {
	return ReadWithEnv(path, os.LookupEnv)
}

// ReadWithEnv merges defaults, the file at path and the environment. A
// missing file yields the defaults.
func ReadWithEnv(path string, lookup func(string) (string, bool)) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse %s", path)
		}
	case os.IsNotExist(err):
	default:
		return Config{}, errors.Wrapf(err, "read %s", path)
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv lets environment variables override file values.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	sc := &c.Lab.SecretChannel
	strs := map[string]*string{
		"SERVER_HOST":         &sc.Server.Host,
		"CHALLENGE_TEXT":      &sc.Challenge.Text,
		"FLAG":                &sc.Challenge.Flag,
		"IDENTITY_STORE_DIR":  &sc.Identity.StoreDir,
		"IDENTITY_PASSPHRASE": &c.IdentityPassphrase,
		"LOG_LEVEL":           &c.Log.Level,
		"LOG_FORMAT":          &c.Log.Format,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"SERVER_PORT":  &sc.Server.Port,
		"RSA_KEY_SIZE": &sc.Server.RSAKeySize,
		"DH_KEY_SIZE":  &sc.Server.DHKeySize,
	}
	for name, dst := range ints {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "%s", name)
		}
		*dst = n
	}

	bools := map[string]*bool{
		"GENERATE_DH_PARAMS": &sc.Server.GenerateDHParams,
		"METRICS_ENABLED":    &c.Metrics.Enabled,
	}
	for name, dst := range bools {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "%s", name)
		}
		*dst = b
	}
	return nil
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	s := c.Lab.SecretChannel
	switch {
	case s.Server.Port < 1 || s.Server.Port > 65535:
		return errors.Errorf("server port %d out of range", s.Server.Port)
	case s.Server.RSAKeySize < 1024:
		return errors.Errorf("rsa_key_size %d is below 1024 bits", s.Server.RSAKeySize)
	case s.Server.DHKeySize < 512:
		return errors.Errorf("dh_key_size %d is below 512 bits", s.Server.DHKeySize)
	case s.Challenge.Flag == "":
		return errors.New("challenge flag is not set (lab.secret_channel.challenge.flag or FLAG)")
	}
	return nil
}

// String renders the configuration as YAML with secrets masked.
func (c Config) String() string {
	if c.Lab.SecretChannel.Challenge.Flag != "" {
		c.Lab.SecretChannel.Challenge.Flag = "<redacted>"
	}
	out, err := yaml.Marshal(c)
	if err != nil {
		return err.Error()
	}
	return string(out)
}
