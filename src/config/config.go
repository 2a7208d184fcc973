package config

import (
	"analytics-sync/src/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Service         ServiceConfig        `mapstructure:"service"`
	Databases       DatabasesConfig      `mapstructure:"databases"`
	ExternalClients ExternalClientConfig `mapstructure:"externalClients"`
	Sync            SyncConfig           `mapstructure:"sync"`
	SingleTenant    SingleTenantConfig   `mapstructure:"singleTenant"`
	AWS             AWSConfig            `mapstructure:"aws"`
}

type ServiceConfig struct {
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"logLevel"`
}

type DatabasesConfig struct {
	SQL     SQLConfig     `mapstructure:"sql"`
	Control ControlConfig `mapstructure:"control"`
}

// SQLConfig holds the destination store coordinates. In multi-tenant mode
// only Username/Password/Port/SSLMode are used; host and database come from
// the control registry per scope.
type SQLConfig struct {
	Host             string `mapstructure:"host"`
	Port             string `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Database         string `mapstructure:"database"`
	SSLMode          string `mapstructure:"sslMode"`
	ConnectionString string `mapstructure:"connection_string"`
}

// ControlConfig points at the control registry. Leaving it empty selects
// single-tenant mode.
type ControlConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
}

type ExternalClientConfig struct {
	BusinessCentral BCConfig      `mapstructure:"businessCentral"`
	AzureAD         AzureADConfig `mapstructure:"azureAD"`
}

type BCConfig struct {
	BaseURL  string `mapstructure:"baseUrl"`
	APIPath  string `mapstructure:"apiPath"`
	MaxPages int    `mapstructure:"maxPages"`
}

type AzureADConfig struct {
	Authority    string `mapstructure:"authority"`
	Scope        string `mapstructure:"scope"`
	ClientSecret string `mapstructure:"clientSecret"`
}

type SyncConfig struct {
	Schedule string `mapstructure:"schedule"`
	Strategy string `mapstructure:"strategy"`
}

// Failure-handling strategies for one scope's four entity syncs.
const (
	StrategyFailFast     = "fail-fast"
	StrategyFailIsolated = "fail-isolated"
)

// SingleTenantConfig describes the one fixed scope synced when no control
// registry is configured.
type SingleTenantConfig struct {
	BCTenantID      string `mapstructure:"bcTenantId"`
	ClientID        string `mapstructure:"clientId"`
	EnvironmentName string `mapstructure:"environmentName"`
	CompanyID       string `mapstructure:"companyId"`
	CompanyName     string `mapstructure:"companyName"`
}

type AWSConfig struct {
	Region         string `mapstructure:"region"`
	ClientSecretID string `mapstructure:"clientSecretId"`
}

func LoadConfig(path string) (*Config, error) {
	var cfg Config

	// Secrets come from the environment; a local .env overlays it in dev.
	_ = godotenv.Load()

	viper.AddConfigPath(path)
	viper.SetConfigName("appsettings")
	viper.SetConfigType("yaml")

	_ = viper.BindEnv("databases.sql.username", "SQL_USER")
	_ = viper.BindEnv("databases.sql.password", "SQL_PASSWORD")
	_ = viper.BindEnv("databases.control.connection_string", "CONTROL_DB_CONNECTION_STRING")
	_ = viper.BindEnv("externalClients.azureAD.clientSecret", "BC_CLIENT_SECRET")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Service.Port == "" {
		c.Service.Port = "8000"
	}
	if c.Sync.Schedule == "" {
		c.Sync.Schedule = "*/30 * * * *"
	}
	if c.ExternalClients.BusinessCentral.MaxPages == 0 {
		c.ExternalClients.BusinessCentral.MaxPages = 1000
	}
	if c.ExternalClients.AzureAD.Authority == "" {
		c.ExternalClients.AzureAD.Authority = "https://login.microsoftonline.com"
	}
	if c.ExternalClients.AzureAD.Scope == "" {
		c.ExternalClients.AzureAD.Scope = "https://api.businesscentral.dynamics.com/.default"
	}
	if c.Sync.Strategy == "" {
		if c.MultiTenant() {
			c.Sync.Strategy = StrategyFailIsolated
		} else {
			c.Sync.Strategy = StrategyFailFast
		}
	}
}

// MultiTenant reports whether scopes come from the control registry.
func (c *Config) MultiTenant() bool {
	return c.Databases.Control.ConnectionString != ""
}

// Validate checks every required setting once at startup so dependent
// components receive already-validated values.
func (c *Config) Validate() error {
	if c.ExternalClients.BusinessCentral.BaseURL == "" {
		return utils.NewConfigError("externalClients.businessCentral.baseUrl not configured")
	}
	if c.ExternalClients.AzureAD.ClientSecret == "" && c.AWS.ClientSecretID == "" {
		return utils.NewConfigError("BC_CLIENT_SECRET not configured")
	}
	if c.Sync.Strategy != StrategyFailFast && c.Sync.Strategy != StrategyFailIsolated {
		return utils.NewConfigError("sync.strategy must be %q or %q", StrategyFailFast, StrategyFailIsolated)
	}
	if c.MultiTenant() {
		if c.Databases.SQL.Username == "" || c.Databases.SQL.Password == "" {
			return utils.NewConfigError("SQL_USER / SQL_PASSWORD not configured")
		}
		return nil
	}
	if c.Databases.SQL.ConnectionString == "" && (c.Databases.SQL.Host == "" || c.Databases.SQL.Database == "") {
		return utils.NewConfigError("databases.sql connection not configured")
	}
	st := c.SingleTenant
	if st.BCTenantID == "" || st.ClientID == "" || st.EnvironmentName == "" || st.CompanyID == "" {
		return utils.NewConfigError("singleTenant scope not fully configured")
	}
	return nil
}
