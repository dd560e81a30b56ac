package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver      string   `env:"DB_DRIVER" envDefault:"mysql"`
	DBHost        string   `env:"DB_HOST" envDefault:"localhost"`
	DBPort        string   `env:"DB_PORT" envDefault:"3306"`
	DBUser        string   `env:"DB_USER" envDefault:"taskuser"`
	DBPassword    string   `env:"DB_PASSWORD" envDefault:"taskpassword"`
	DBName        string   `env:"DB_NAME" envDefault:"earth_fighter"`
	RedisHost     string   `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     string   `env:"REDIS_PORT" envDefault:"6379"`
	SessionSecret string   `env:"SESSION_SECRET" envDefault:"default-secret-key-change-me"`
	JWTSecret     string   `env:"JWT_SECRET" envDefault:"default-jwt-secret-change-me"`
	JWTExpiryMins int      `env:"JWT_EXPIRY_MINUTES" envDefault:"1440"`
	GinMode       string   `env:"GIN_MODE" envDefault:"debug"`
	Port          string   `env:"PORT" envDefault:"8080"`
	OpenAIAPIKey  string   `env:"OPENAI_API_KEY"`
	OTelEndpoint  string   `env:"OTEL_EXPORTER_ENDPOINT"`
	OrgTypes      []string `env:"ORGANIZATION_TYPES" envSeparator:"," envDefault:"family,company,school,club,team"`
	// AllowConfirmFailure lets a publisher confirm a submitted task as failed.
	AllowConfirmFailure bool `env:"ALLOW_CONFIRM_FAILURE" envDefault:"true"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if len(cfg.Domain().OrganizationTypes()) == 0 {
		return nil, fmt.Errorf("ORGANIZATION_TYPES must name at least one type")
	}
	return cfg, nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// Domain returns the business rules configured for this process.
func (c *Config) Domain() Domain {
	return NewDomain(c.OrgTypes, c.AllowConfirmFailure)
}

// Domain is an immutable set of business rules handed to the services and
// the lifecycle engine at construction time.
type Domain struct {
	orgTypes            map[string]struct{}
	orgTypeList         []string
	allowConfirmFailure bool
}

// NewDomain copies types, trimming blanks and duplicates.
func NewDomain(orgTypes []string, allowConfirmFailure bool) Domain {
	d := Domain{
		orgTypes:            make(map[string]struct{}, len(orgTypes)),
		allowConfirmFailure: allowConfirmFailure,
	}
	for _, t := range orgTypes {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := d.orgTypes[t]; dup {
			continue
		}
		d.orgTypes[t] = struct{}{}
		d.orgTypeList = append(d.orgTypeList, t)
	}
	return d
}

// IsOrganizationTypeValid reports whether t is a configured organization type.
func (d Domain) IsOrganizationTypeValid(t string) bool {
	_, ok := d.orgTypes[t]
	return ok
}

// OrganizationTypes returns a copy of the configured organization types.
func (d Domain) OrganizationTypes() []string {
	return append([]string(nil), d.orgTypeList...)
}

// AllowConfirmFailure reports whether confirm may resolve a task to FAILED.
func (d Domain) AllowConfirmFailure() bool {
	return d.allowConfirmFailure
}
