package config

import (
	"errors"
	"fmt"
	"github.com/1f349/acme-redirect/logger"
	"github.com/BurntSushi/toml"
	"os"
	"path/filepath"
)

// DefaultRenewIfDaysLeft is used when the main config file does not set
// `renew_if_days_left`
const DefaultRenewIfDaysLeft int64 = 30

// certFileExt is the extension of per-certificate config files
const certFileExt = ".conf"

// ConfigError is returned when a config file or directory cannot be read or
// decoded
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("failed to load config %q: %s", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

var (
	ErrMissingName     = errors.New("certificate name is missing")
	ErrMissingDnsNames = errors.New("certificate has no dns_names")
	ErrDuplicateName   = errors.New("duplicate certificate name")
)

// Invocation contains the values supplied on the command line. These always
// take priority over the config files.
type Invocation struct {
	Config    string
	ConfigDir string
	DataDir   string
	ChallDir  string
	AcmeEmail string
	AcmeUrl   string
}

// Config is the merged runtime configuration. It is built once by Load and
// must not be modified afterwards.
type Config struct {
	AcmeEmail       string
	AcmeUrl         string
	RenewIfDaysLeft int64
	DataDir         string
	ChallDir        string
	Group           string
	Exec            []string
	ExecExtra       []string
	Certs           []CertConfig
}

type CertConfig struct {
	Name       string   `toml:"name"`
	DnsNames   []string `toml:"dns_names"`
	MustStaple bool     `toml:"must_staple"`
	Exec       []string `toml:"exec"`
}

type configFile struct {
	Acme   acmeConfig   `toml:"acme"`
	System systemConfig `toml:"system"`
}

type acmeConfig struct {
	AcmeEmail       string `toml:"acme_email"`
	AcmeUrl         string `toml:"acme_url"`
	RenewIfDaysLeft *int64 `toml:"renew_if_days_left"`
}

type systemConfig struct {
	Group     string   `toml:"group"`
	Exec      []string `toml:"exec"`
	ExecExtra []string `toml:"exec_extra"`
}

type certConfigFile struct {
	Cert CertConfig `toml:"cert"`
}

// Load reads the main config file and every certificate config in the config
// directory then merges them with the invocation values
func Load(inv Invocation) (*Config, error) {
	var file configFile
	if err := decodeFile(inv.Config, &file); err != nil {
		return nil, err
	}

	certs, err := loadCertDir(inv.ConfigDir)
	if err != nil {
		return nil, err
	}

	email := file.Acme.AcmeEmail
	if inv.AcmeEmail != "" {
		email = inv.AcmeEmail
	}

	renewIfDaysLeft := DefaultRenewIfDaysLeft
	if file.Acme.RenewIfDaysLeft != nil {
		renewIfDaysLeft = *file.Acme.RenewIfDaysLeft
	}

	// acme_url is intentionally sourced from the invocation only
	return &Config{
		AcmeEmail:       email,
		AcmeUrl:         inv.AcmeUrl,
		RenewIfDaysLeft: renewIfDaysLeft,
		DataDir:         inv.DataDir,
		ChallDir:        inv.ChallDir,
		Group:           file.System.Group,
		Exec:            file.System.Exec,
		ExecExtra:       file.System.ExecExtra,
		Certs:           certs,
	}, nil
}

func loadCertDir(dir string) ([]CertConfig, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &ConfigError{Path: dir, Err: err}
	}

	certs := make([]CertConfig, 0, len(entries))
	seen := make(map[string]string)
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() || filepath.Ext(entry.Name()) != certFileExt {
			logger.Logger.Debug("Skipping non-config file", "path", path)
			continue
		}

		cert, err := loadCertFile(path)
		if err != nil {
			return nil, err
		}
		if other, ok := seen[cert.Name]; ok {
			return nil, &ConfigError{Path: path, Err: fmt.Errorf("%w: %q also defined in %s", ErrDuplicateName, cert.Name, other)}
		}
		seen[cert.Name] = path
		certs = append(certs, cert)
	}
	return certs, nil
}

func loadCertFile(path string) (CertConfig, error) {
	var file certConfigFile
	if err := decodeFile(path, &file); err != nil {
		return CertConfig{}, err
	}
	switch {
	case file.Cert.Name == "":
		return CertConfig{}, &ConfigError{Path: path, Err: ErrMissingName}
	case len(file.Cert.DnsNames) == 0:
		return CertConfig{}, &ConfigError{Path: path, Err: ErrMissingDnsNames}
	}
	return file.Cert, nil
}

func decodeFile(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	if _, err := toml.Decode(string(raw), v); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	return nil
}
