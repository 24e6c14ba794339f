package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath = "."

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	UserDeletionCascade  = "cascade"
	UserDeletionRestrict = "restrict"

	PlaceholderImageURL       = "/static/images/default-pic.png"
	PlaceholderHeaderImageURL = "/static/images/warbler-hero.jpg"
	DefaultTimelineLimit      = 100
	defaultBcryptCost         = 12
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	Database *DatabaseConfig `json:"database" yaml:"database"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	PasswordStrength *PasswordStrengthConfig `json:"passwordStrength" yaml:"passwordStrength"`

	// Accounts configures profile defaults and what happens to a user's data on deletion
	Accounts *AccountsConfig `json:"accounts" yaml:"accounts"`

	Timeline *TimelineConfig `json:"timeline" yaml:"timeline"`
}

// DatabaseConfig selects the gorm dialector and tunes its connection pool
type DatabaseConfig struct {
	Driver          string        `json:"driver" yaml:"driver"`
	DSN             string        `json:"dsn" yaml:"dsn"`
	Replicas        []string      `json:"replicas" yaml:"replicas"`
	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"`
	AutoMigrate     bool          `json:"autoMigrate" yaml:"autoMigrate"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	BcryptCost int `json:"bcryptCost" yaml:"bcryptCost"`
}

// PasswordStrengthConfig defines password strength requirements
type PasswordStrengthConfig struct {
	MinLength        int      `json:"minLength" yaml:"minLength"`
	MaxLength        int      `json:"maxLength" yaml:"maxLength"`
	RequireUppercase bool     `json:"requireUppercase" yaml:"requireUppercase"`
	RequireLowercase bool     `json:"requireLowercase" yaml:"requireLowercase"`
	RequireNumbers   bool     `json:"requireNumbers" yaml:"requireNumbers"`
	RequireSpecial   bool     `json:"requireSpecial" yaml:"requireSpecial"`
	ForbiddenWords   []string `json:"forbiddenWords" yaml:"forbiddenWords"`
}

// AccountsConfig defines profile defaults and the user deletion policy
type AccountsConfig struct {
	// UserDeletion is either "cascade" or "restrict"
	UserDeletion          string `json:"userDeletion" yaml:"userDeletion"`
	DefaultImageURL       string `json:"defaultImageUrl" yaml:"defaultImageUrl"`
	DefaultHeaderImageURL string `json:"defaultHeaderImageUrl" yaml:"defaultHeaderImageUrl"`
}

// TimelineConfig bounds the home timeline
type TimelineConfig struct {
	Limit int `json:"limit" yaml:"limit"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	// A .env next to the binary feeds the same override path as real environment variables.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env failed")
	}

	existingConfigMap := koanfInstance.Raw()

	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Example: DATABASE_AUTOMIGRATE -> database.autoMigrate
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	// DATABASE_REPLICAS_0_DSN, DATABASE_REPLICAS_1_DSN, ...
	if replicas := buildReplicasFromEnv(); len(replicas) > 0 {
		cfg.Database.Replicas = replicas
	}

	return cfg, nil
}

// applyDefaults fills the optional sections and rejects unknown enum values.
func (cfg *Config) applyDefaults() error {
	if cfg.Database == nil {
		cfg.Database = &DatabaseConfig{}
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Database.Driver != DriverPostgres && cfg.Database.Driver != DriverSQLite {
		return errors.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = defaultBcryptCost
	}

	if cfg.PasswordStrength == nil {
		cfg.PasswordStrength = &PasswordStrengthConfig{}
	}

	if cfg.Accounts == nil {
		cfg.Accounts = &AccountsConfig{}
	}
	switch cfg.Accounts.UserDeletion {
	case "":
		cfg.Accounts.UserDeletion = UserDeletionCascade
	case UserDeletionCascade, UserDeletionRestrict:
	default:
		return errors.Errorf("unsupported user deletion policy: %s", cfg.Accounts.UserDeletion)
	}
	if cfg.Accounts.DefaultImageURL == "" {
		cfg.Accounts.DefaultImageURL = PlaceholderImageURL
	}
	if cfg.Accounts.DefaultHeaderImageURL == "" {
		cfg.Accounts.DefaultHeaderImageURL = PlaceholderHeaderImageURL
	}

	if cfg.Timeline == nil {
		cfg.Timeline = &TimelineConfig{}
	}
	if cfg.Timeline.Limit <= 0 {
		cfg.Timeline.Limit = DefaultTimelineLimit
	}

	return nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv builds the read replica DSN list from environment variables.
// Environment variable format: DATABASE_REPLICAS_{index}_DSN
func buildReplicasFromEnv() []string {
	var replicas []string

	for i := 0; ; i++ {
		dsn := os.Getenv("DATABASE_REPLICAS_" + strconv.Itoa(i) + "_DSN")
		if dsn == "" {
			break
		}

		replicas = append(replicas, dsn)
	}

	return replicas
}
