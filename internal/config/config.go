package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit      string        `mapstructure:"BODY_LIMIT"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`

	AuthSigningKey string   `mapstructure:"AUTH_SIGNING_KEY"`
	AuthIssuer     string   `mapstructure:"AUTH_ISSUER"`
	WriteRoles     []string `mapstructure:"WRITE_ROLES"` // may submit and delete encounters

	DatabaseURL string        `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32         `mapstructure:"DB_MIN_CONNS"`
	RedisURL    string        `mapstructure:"REDIS_URL"`
	CacheTTL    time.Duration `mapstructure:"CACHE_TTL"`

	OpenMRSBaseURL  string        `mapstructure:"OPENMRS_BASE_URL"`
	OpenMRSUsername string        `mapstructure:"OPENMRS_USERNAME"`
	OpenMRSPassword string        `mapstructure:"OPENMRS_PASSWORD"`
	OpenMRSTimeout  time.Duration `mapstructure:"OPENMRS_TIMEOUT"`
	OpenMRSRPS      float64       `mapstructure:"OPENMRS_RPS"`
	OpenMRSBurst    int           `mapstructure:"OPENMRS_BURST"`

	DefaultProviderUUID      string `mapstructure:"DEFAULT_PROVIDER_UUID"`
	DefaultEncounterRoleUUID string `mapstructure:"DEFAULT_ENCOUNTER_ROLE_UUID"`
	FacilityLocationTag      string `mapstructure:"FACILITY_LOCATION_TAG"`
	Timezone                 string `mapstructure:"TIMEZONE"`

	EncounterTypes `mapstructure:",squash"`
}

// EncounterTypes holds the encounter type and form UUIDs each workspace
// writes against. They differ per OpenMRS deployment.
type EncounterTypes struct {
	TransferOut     string `mapstructure:"ENCOUNTER_TYPE_TRANSFER_OUT"`
	FollowUp        string `mapstructure:"ENCOUNTER_TYPE_FOLLOW_UP"`
	KPP             string `mapstructure:"ENCOUNTER_TYPE_KPP"`
	SNS             string `mapstructure:"ENCOUNTER_TYPE_SNS"`
	Vitals          string `mapstructure:"ENCOUNTER_TYPE_VITALS"`
	Template        string `mapstructure:"ENCOUNTER_TYPE_TEMPLATE"`
	TransferOutForm string `mapstructure:"FORM_UUID_TRANSFER_OUT"`
	KPPForm         string `mapstructure:"FORM_UUID_KPP"`
	SNSForm         string `mapstructure:"FORM_UUID_SNS"`
	VitalsForm      string `mapstructure:"FORM_UUID_VITALS"`
	TemplateForm    string `mapstructure:"FORM_UUID_TEMPLATE"`
}

var envKeys = []string{
	"PORT", "ENV", "CORS_ORIGINS",
	"REQUEST_TIMEOUT", "BODY_LIMIT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"AUTH_SIGNING_KEY", "AUTH_ISSUER", "WRITE_ROLES",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "REDIS_URL", "CACHE_TTL",
	"OPENMRS_BASE_URL", "OPENMRS_USERNAME", "OPENMRS_PASSWORD",
	"OPENMRS_TIMEOUT", "OPENMRS_RPS", "OPENMRS_BURST",
	"DEFAULT_PROVIDER_UUID", "DEFAULT_ENCOUNTER_ROLE_UUID", "FACILITY_LOCATION_TAG", "TIMEZONE",
	"ENCOUNTER_TYPE_TRANSFER_OUT", "ENCOUNTER_TYPE_FOLLOW_UP", "ENCOUNTER_TYPE_KPP",
	"ENCOUNTER_TYPE_SNS", "ENCOUNTER_TYPE_VITALS", "ENCOUNTER_TYPE_TEMPLATE",
	"FORM_UUID_TRANSFER_OUT", "FORM_UUID_KPP", "FORM_UUID_SNS",
	"FORM_UUID_VITALS", "FORM_UUID_TEMPLATE",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:8080")
	v.SetDefault("REQUEST_TIMEOUT", "45s")
	v.SetDefault("BODY_LIMIT", "256K")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("WRITE_ROLES", "Provider")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("OPENMRS_TIMEOUT", "30s")
	v.SetDefault("OPENMRS_RPS", 20)
	v.SetDefault("OPENMRS_BURST", 40)
	v.SetDefault("DEFAULT_PROVIDER_UUID", "caa66686-bde7-4341-a330-91b7ad0ade07")
	v.SetDefault("DEFAULT_ENCOUNTER_ROLE_UUID", "a0b03050-c99b-11e0-9572-0800200c9a66")
	v.SetDefault("FACILITY_LOCATION_TAG", "Facility Location")
	v.SetDefault("TIMEZONE", "Africa/Addis_Ababa")
	v.SetDefault("ENCOUNTER_TYPE_TRANSFER_OUT", "b3d2c1a7-3e3f-4a62-9f0e-5a8c8f1d2e41")
	v.SetDefault("ENCOUNTER_TYPE_FOLLOW_UP", "136b2ded-22a3-4831-a39a-088d35a50ef5")
	v.SetDefault("ENCOUNTER_TYPE_KPP", "c785bab5-f909-4d97-990f-9ba790a537ce")
	v.SetDefault("ENCOUNTER_TYPE_SNS", "e22e39fd-7db2-45e7-80f1-154e437b42e3")
	v.SetDefault("ENCOUNTER_TYPE_VITALS", "67a71486-1a54-468f-ac3e-7091a9a79584")
	v.SetDefault("ENCOUNTER_TYPE_TEMPLATE", "f1b397c1-46bd-43e6-a23d-ae2cedaec881")
	v.SetDefault("FORM_UUID_TRANSFER_OUT", "6b5e3c2d-0f8a-4b8e-a2d1-7c4f9e0b3a15")
	v.SetDefault("FORM_UUID_KPP", "0c8f4a3e-7d21-4e6b-b9a5-3f2e1d6c8b70")
	v.SetDefault("FORM_UUID_SNS", "9a1d7e5c-2b4f-4c3a-8e6d-5f0b2a9c7d14")
	v.SetDefault("FORM_UUID_VITALS", "a000cb34-9ec1-4344-a1c8-f692232f6edd")
	v.SetDefault("FORM_UUID_TEMPLATE", "e270770f-19bf-3d32-baaf-4b677983dec3")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range envKeys {
		v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	cfg.WriteRoles = splitList(strings.Join(cfg.WriteRoles, ","))

	if cfg.OpenMRSBaseURL == "" {
		return nil, fmt.Errorf("OPENMRS_BASE_URL is required")
	}
	cfg.OpenMRSBaseURL = strings.TrimRight(cfg.OpenMRSBaseURL, "/")

	if cfg.IsDev() {
		log.Println("WARNING: ENV=development, requests without a bearer token run as the default provider")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Location is the zone dates on the forms and tables are read in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.OpenMRSBaseURL); err != nil {
		return fmt.Errorf("OPENMRS_BASE_URL is not a valid URL: %w", err)
	}
	if !c.IsDev() && c.AuthSigningKey == "" {
		return fmt.Errorf("AUTH_SIGNING_KEY is required when ENV=%q", c.Env)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.OpenMRSRPS <= 0 {
		return fmt.Errorf("OPENMRS_RPS must be positive, got %v", c.OpenMRSRPS)
	}

	ids := map[string]string{
		"DEFAULT_PROVIDER_UUID":       c.DefaultProviderUUID,
		"DEFAULT_ENCOUNTER_ROLE_UUID": c.DefaultEncounterRoleUUID,
		"ENCOUNTER_TYPE_TRANSFER_OUT": c.EncounterTypes.TransferOut,
		"ENCOUNTER_TYPE_FOLLOW_UP":    c.EncounterTypes.FollowUp,
		"ENCOUNTER_TYPE_KPP":          c.EncounterTypes.KPP,
		"ENCOUNTER_TYPE_SNS":          c.EncounterTypes.SNS,
		"ENCOUNTER_TYPE_VITALS":       c.EncounterTypes.Vitals,
		"ENCOUNTER_TYPE_TEMPLATE":     c.EncounterTypes.Template,
		"FORM_UUID_TRANSFER_OUT":      c.EncounterTypes.TransferOutForm,
		"FORM_UUID_KPP":               c.EncounterTypes.KPPForm,
		"FORM_UUID_SNS":               c.EncounterTypes.SNSForm,
		"FORM_UUID_VITALS":            c.EncounterTypes.VitalsForm,
		"FORM_UUID_TEMPLATE":          c.EncounterTypes.TemplateForm,
	}
	for key, val := range ids {
		if _, err := uuid.Parse(val); err != nil {
			return fmt.Errorf("%s must be a UUID, got %q", key, val)
		}
	}
	return nil
}
