package main

import (
	"flag"
	"fmt"
	"github.com/1f349/acme-redirect/config"
	"github.com/1f349/acme-redirect/logger"
	"github.com/caarlos0/env/v11"
	"github.com/go-acme/lego/v4/lego"
	"github.com/google/subcommands"
)

// invocationEnv provides the defaults for the global flags
type invocationEnv struct {
	Config    string `env:"ACME_REDIRECT_CONFIG" envDefault:"/etc/acme-redirect.conf"`
	ConfigDir string `env:"ACME_REDIRECT_CONFIG_DIR" envDefault:"/etc/acme-redirect.d"`
	DataDir   string `env:"DATA_DIR" envDefault:"/var/lib/acme-redirect"`
	ChallDir  string `env:"CHALL_DIR" envDefault:"/run/acme-redirect"`
	AcmeEmail string `env:"ACME_EMAIL"`
	AcmeUrl   string `env:"ACME_URL"`
}

func registerInvocationFlags(f *flag.FlagSet) (*config.Invocation, error) {
	var defaults invocationEnv
	if err := env.Parse(&defaults); err != nil {
		return nil, err
	}
	if defaults.AcmeUrl == "" {
		defaults.AcmeUrl = lego.LEDirectoryProduction
	}

	inv := &config.Invocation{}
	f.StringVar(&inv.Config, "config", defaults.Config, "/path/to/acme-redirect.conf : path to the main config file")
	f.StringVar(&inv.ConfigDir, "config-dir", defaults.ConfigDir, "/path/to/acme-redirect.d : directory containing the certificate configs")
	f.StringVar(&inv.DataDir, "data-dir", defaults.DataDir, "directory to store certificates and account data in")
	f.StringVar(&inv.ChallDir, "chall-dir", defaults.ChallDir, "directory to serve challenge proofs from")
	f.StringVar(&inv.AcmeEmail, "acme-email", defaults.AcmeEmail, "email for the acme account, overrides the config file")
	f.StringVar(&inv.AcmeUrl, "acme-url", defaults.AcmeUrl, "acme directory url")
	return inv, nil
}

// invocationArg extracts the invocation passed to subcommands.Execute
func invocationArg(args []interface{}) (*config.Invocation, error) {
	if len(args) == 1 {
		if inv, ok := args[0].(*config.Invocation); ok {
			return inv, nil
		}
	}
	return nil, fmt.Errorf("missing invocation")
}

// loadConfig loads the config for the status and check commands
func loadConfig(args []interface{}) (*config.Config, subcommands.ExitStatus) {
	inv, err := invocationArg(args)
	if err != nil {
		logger.Logger.Error("Invalid arguments", "err", err)
		return nil, subcommands.ExitUsageError
	}
	conf, err := config.Load(*inv)
	if err != nil {
		logger.Logger.Error("Failed to load config", "err", err)
		return nil, subcommands.ExitFailure
	}
	return conf, subcommands.ExitSuccess
}
