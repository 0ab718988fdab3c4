package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/addrlist"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/remote"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/routeros"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/scheduler"
)

const (
	DefaultRegistryEndpoint = "https://stat.ripe.net/data/country-resource-list/data.json"
	DefaultCountry          = "RU"
	DefaultListName         = "RU"
	DefaultAPIListen        = "127.0.0.1:8089"

	TransportSSH    = "ssh"
	TransportNative = "native"
)

type Config struct {
	// General holds logging settings.
	General *GeneralConfig `toml:"general" json:"general"`
	// Registry is the source of per-country address allocations.
	Registry *RegistryConfig `toml:"registry" json:"registry"`
	// Router describes how to reach the RouterOS device.
	Router *RouterConfig `toml:"router" json:"router"`
	// AddressList describes the firewall address-list being replaced.
	AddressList *AddressListConfig `toml:"address_list" json:"address_list"`
	// Service holds settings for the long-running mode.
	Service *ServiceConfig `toml:"service" json:"service"`
	// Audit holds the optional geolocation cross-check.
	Audit *AuditConfig `toml:"audit" json:"audit"`

	_absConfigFilePath string
}

type GeneralConfig struct {
	// LogFile enables writing logs to a rotated file in addition to the console.
	LogFile string `toml:"log_file,omitempty" json:"log_file,omitempty"`
	// LogMaxSizeMB is the size after which the log file is rotated (default: 10).
	LogMaxSizeMB int `toml:"log_max_size_mb" json:"log_max_size_mb" validate:"min=0"`
	// LogMaxBackups is the number of rotated files kept (default: 3).
	LogMaxBackups int `toml:"log_max_backups" json:"log_max_backups" validate:"min=0"`
	// LogMaxAgeDays is the number of days rotated files are kept (0 = forever).
	LogMaxAgeDays int `toml:"log_max_age_days" json:"log_max_age_days" validate:"min=0"`
}

type RegistryConfig struct {
	// Endpoint is the country resource list endpoint (default: RIPEstat).
	Endpoint string `toml:"endpoint" json:"endpoint" validate:"required,url"`
	// Country is the ISO 3166-1 alpha-2 code of the country (default: RU).
	Country string `toml:"country" json:"country" validate:"required,country_alpha2"`
	// TimeoutSeconds limits the registry request (default: 60).
	TimeoutSeconds int `toml:"timeout_seconds" json:"timeout_seconds" validate:"min=1"`
}

type RouterConfig struct {
	// Host is the IP address or host name of the device. Prompted for when empty.
	Host string `toml:"host" json:"host" validate:"omitempty,hostname_rfc1123|ip"`
	// Username is the login. Prompted for when empty.
	Username string `toml:"username" json:"username"`
	// Port is the SSH port (default: 22).
	Port int `toml:"port" json:"port" validate:"min=0,max=65535"`
	// Transport is "ssh" (system ssh binary) or "native" (built-in client).
	Transport string `toml:"transport" json:"transport" validate:"required,transport"`
	// SSHBinary is the ssh executable used by the "ssh" transport.
	SSHBinary string `toml:"ssh_binary" json:"ssh_binary"`
	// IdentityFile is a private key file used for authentication.
	IdentityFile string `toml:"identity_file,omitempty" json:"identity_file,omitempty"`
	// UseAgent enables ssh-agent authentication for the "native" transport (default: true).
	UseAgent bool `toml:"use_agent" json:"use_agent"`
	// ConnectTimeoutSeconds limits connection establishment (0 = ssh default).
	ConnectTimeoutSeconds int `toml:"connect_timeout_seconds" json:"connect_timeout_seconds" validate:"min=0"`
}

type AddressListConfig struct {
	// Name of the address-list. Prompted for when empty, default: RU.
	Name string `toml:"name" json:"name" validate:"omitempty,list_name"`
	// Comment attached to every added entry.
	Comment string `toml:"comment" json:"comment" validate:"required,directive_value"`
	// BatchSize is the number of entries sent per remote invocation (default: 500).
	BatchSize int `toml:"batch_size" json:"batch_size" validate:"min=1,max=10000"`
	// PauseSeconds is the delay between batches (default: 30).
	PauseSeconds int `toml:"pause_seconds" json:"pause_seconds" validate:"min=0"`
}

type ServiceConfig struct {
	// Schedule is a six-field cron expression (with seconds) or a descriptor like "@every 6h".
	Schedule string `toml:"schedule" json:"schedule" validate:"required,cron_spec"`
	// RunOnStart runs a synchronization immediately when the service starts.
	RunOnStart bool `toml:"run_on_start" json:"run_on_start"`
	// SkipUnchanged skips synchronization when the fetched set did not change since the last successful run.
	SkipUnchanged bool `toml:"skip_unchanged" json:"skip_unchanged"`
	// APIListen is the status API listen address; empty disables the API.
	APIListen string `toml:"api_listen" json:"api_listen" validate:"omitempty,hostname_port"`
}

type AuditConfig struct {
	// GeoIPDB is the path of a GeoLite2 country database; empty disables the cross-check.
	GeoIPDB string `toml:"geoip_db,omitempty" json:"geoip_db,omitempty"`
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills missing sections and zero-valued settings.
func (c *Config) ApplyDefaults() {
	if c.General == nil {
		c.General = &GeneralConfig{}
	}
	if c.General.LogMaxSizeMB == 0 {
		c.General.LogMaxSizeMB = 10
	}
	if c.General.LogMaxBackups == 0 {
		c.General.LogMaxBackups = 3
	}

	if c.Registry == nil {
		c.Registry = &RegistryConfig{}
	}
	if c.Registry.Endpoint == "" {
		c.Registry.Endpoint = DefaultRegistryEndpoint
	}
	if c.Registry.Country == "" {
		c.Registry.Country = DefaultCountry
	}
	c.Registry.Country = strings.ToUpper(strings.TrimSpace(c.Registry.Country))
	if c.Registry.TimeoutSeconds == 0 {
		c.Registry.TimeoutSeconds = 60
	}

	if c.Router == nil {
		c.Router = &RouterConfig{UseAgent: true}
	}
	if c.Router.Port == 0 {
		c.Router.Port = remote.DefaultPort
	}
	if c.Router.Transport == "" {
		c.Router.Transport = TransportSSH
	}
	if c.Router.SSHBinary == "" {
		c.Router.SSHBinary = "ssh"
	}

	if c.AddressList == nil {
		c.AddressList = &AddressListConfig{PauseSeconds: int(addrlist.DefaultPause / time.Second)}
	}
	if c.AddressList.Comment == "" {
		c.AddressList.Comment = routeros.DefaultComment
	}
	if c.AddressList.BatchSize == 0 {
		c.AddressList.BatchSize = addrlist.DefaultBatchSize
	}

	if c.Service == nil {
		c.Service = &ServiceConfig{RunOnStart: true, SkipUnchanged: true}
	}
	if c.Service.Schedule == "" {
		c.Service.Schedule = scheduler.DefaultSchedule
	}

	if c.Audit == nil {
		c.Audit = &AuditConfig{}
	}
}

func (c *Config) GetConfigDir() string {
	return filepath.Dir(c._absConfigFilePath)
}

// GetAbsolutePath resolves path relative to the config file directory.
func (c *Config) GetAbsolutePath(path string) string {
	if path == "" || filepath.IsAbs(path) || c._absConfigFilePath == "" {
		return path
	}
	return filepath.Join(c.GetConfigDir(), path)
}

// Endpoint returns the remote device address and login.
func (c *Config) Endpoint() remote.Endpoint {
	return remote.Endpoint{
		Host: c.Router.Host,
		Port: c.Router.Port,
		User: c.Router.Username,
	}
}

// Target returns the synchronization target.
func (c *Config) Target() addrlist.Target {
	name := c.AddressList.Name
	if name == "" {
		name = DefaultListName
	}
	return addrlist.Target{Endpoint: c.Endpoint(), ListName: name}
}

// SyncOptions returns the batching options.
func (c *Config) SyncOptions() addrlist.Options {
	return addrlist.Options{
		BatchSize: c.AddressList.BatchSize,
		Pause:     time.Duration(c.AddressList.PauseSeconds) * time.Second,
		Comment:   c.AddressList.Comment,
	}
}

func (c *Config) RegistryTimeout() time.Duration {
	return time.Duration(c.Registry.TimeoutSeconds) * time.Second
}

func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Router.ConnectTimeoutSeconds) * time.Second
}
