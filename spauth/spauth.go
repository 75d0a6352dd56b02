package spauth

import (
	"fmt"
	"os"
	"strings"

	"github.com/koltyakov/gosip"
	"github.com/koltyakov/gosip/auth/addin"
	"github.com/koltyakov/gosip/auth/azurecert"
)

// Supported authentication strategies.
const (
	StrategyAzureCert = "azurecert"
	StrategyAddin     = "addin"
)

type Config struct {
	Strategy     string
	SiteURL      string
	TenantID     string
	ClientID     string
	CertPath     string
	CertPassword string
	ClientSecret string
}

func FromEnv() (Config, error) {
	// Environment should already be loaded by main.go
	cfg := Config{
		Strategy:     strings.ToLower(os.Getenv("SP_AUTH_STRATEGY")),
		SiteURL:      os.Getenv("SP_SITE_URL"),
		TenantID:     os.Getenv("SP_TENANT_ID"),
		ClientID:     os.Getenv("SP_CLIENT_ID"),
		CertPath:     os.Getenv("SP_CERT_PATH"),
		CertPassword: os.Getenv("SP_CERT_PASSWORD"),
		ClientSecret: os.Getenv("SP_CLIENT_SECRET"),
	}
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyAzureCert
	}
	return cfg, cfg.Validate()
}

// Validate checks that the settings required by the chosen strategy are present.
func (c Config) Validate() error {
	switch c.Strategy {
	case StrategyAzureCert, "":
		if c.SiteURL == "" || c.TenantID == "" || c.ClientID == "" || c.CertPath == "" {
			return fmt.Errorf("missing required configuration: SP_SITE_URL, SP_TENANT_ID, SP_CLIENT_ID, SP_CERT_PATH")
		}
	case StrategyAddin:
		if c.SiteURL == "" || c.ClientID == "" || c.ClientSecret == "" {
			return fmt.Errorf("missing required configuration: SP_SITE_URL, SP_CLIENT_ID, SP_CLIENT_SECRET")
		}
	default:
		return fmt.Errorf("unknown SP_AUTH_STRATEGY %q (want %s or %s)", c.Strategy, StrategyAzureCert, StrategyAddin)
	}
	return nil
}

func NewClient(cfg Config) (*gosip.SPClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var auth gosip.AuthCnfg
	switch cfg.Strategy {
	case StrategyAddin:
		auth = &addin.AuthCnfg{
			SiteURL:      cfg.SiteURL,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
		}
	default:
		auth = &azurecert.AuthCnfg{
			SiteURL:  cfg.SiteURL,
			TenantID: cfg.TenantID,
			ClientID: cfg.ClientID,
			CertPath: cfg.CertPath,
			CertPass: cfg.CertPassword,
		}
	}
	client := &gosip.SPClient{AuthCnfg: auth}
	return client, nil
}
