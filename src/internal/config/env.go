package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/log"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RIPE_ADDRLIST_"

// LoadDotEnv loads variables from the given .env files into the process environment.
// Variables already set are not overridden and missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		log.Debugf("Loaded environment from %s", path)
	}
	return nil
}

// ApplyEnv overrides settings from RIPE_ADDRLIST_* variables of the process environment.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}

	str("REGISTRY_ENDPOINT", &c.Registry.Endpoint)
	str("COUNTRY", &c.Registry.Country)
	str("HOST", &c.Router.Host)
	str("USER", &c.Router.Username)
	num("PORT", &c.Router.Port)
	str("TRANSPORT", &c.Router.Transport)
	str("IDENTITY_FILE", &c.Router.IdentityFile)
	flag("USE_AGENT", &c.Router.UseAgent)
	str("LIST", &c.AddressList.Name)
	num("BATCH_SIZE", &c.AddressList.BatchSize)
	num("PAUSE_SECONDS", &c.AddressList.PauseSeconds)
	str("SCHEDULE", &c.Service.Schedule)
	str("API_LISTEN", &c.Service.APIListen)
	str("GEOIP_DB", &c.Audit.GeoIPDB)
	str("LOG_FILE", &c.General.LogFile)

	c.Registry.Country = strings.ToUpper(c.Registry.Country)

	return errors.Join(errs...)
}
