package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/1f349/acme-redirect/config"
	"github.com/1f349/acme-redirect/logger"
	"github.com/1f349/acme-redirect/renewal"
	"github.com/google/subcommands"
	"time"
)

type statusCmd struct{}

func (s *statusCmd) Name() string             { return "status" }
func (s *statusCmd) Synopsis() string         { return "Show the expiry status of certificates" }
func (s *statusCmd) SetFlags(f *flag.FlagSet) {}
func (s *statusCmd) Usage() string {
	return `status [name...]
  Show when each certificate expires and if it is due for renewal
`
}

func (s *statusCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	conf, status := loadConfig(args)
	if status != subcommands.ExitSuccess {
		return status
	}

	filter := config.NewFilter(f.Args()...)
	warnUnknownCerts(conf, f.Args())

	now := time.Now()
	exit := subcommands.ExitSuccess
	for cert := range conf.FilterCerts(filter) {
		st, err := renewal.LoadStatus(conf, cert, now)
		if err != nil {
			logger.Logger.Error("Failed to load certificate status", "cert", cert.Name, "err", err)
			exit = subcommands.ExitFailure
			continue
		}

		switch {
		case st.Missing:
			fmt.Printf("%-40s not issued yet\n", st.Name)
		case st.Due:
			fmt.Printf("%-40s expires %s (%d days left, due for renewal)\n", st.Name, st.NotAfter.Format(time.DateOnly), st.DaysLeft)
		default:
			fmt.Printf("%-40s expires %s (%d days left)\n", st.Name, st.NotAfter.Format(time.DateOnly), st.DaysLeft)
		}
	}
	return exit
}

// warnUnknownCerts logs the names which do not match any loaded certificate
func warnUnknownCerts(conf *config.Config, names []string) {
	known := make(map[string]bool, len(conf.Certs))
	for _, i := range conf.Certs {
		known[i.Name] = true
	}
	for _, i := range names {
		if !known[i] {
			logger.Logger.Warn("Unknown certificate", "name", i)
		}
	}
}
