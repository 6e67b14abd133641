package main

import (
	"context"
	"flag"
	"github.com/1f349/acme-redirect/config"
	"github.com/1f349/acme-redirect/http-acme"
	"github.com/1f349/acme-redirect/logger"
	"github.com/google/subcommands"
	"net/http"
	"time"
)

type checkCmd struct {
	port    int
	timeout time.Duration
}

func (c *checkCmd) Name() string     { return "check" }
func (c *checkCmd) Synopsis() string { return "Check challenges are served for every dns name" }
func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.port, "port", 80, "port the daemon is reachable on")
	f.DurationVar(&c.timeout, "timeout", 10*time.Second, "timeout for each request")
}
func (c *checkCmd) Usage() string {
	return `check [-port <port>] [-timeout <duration>] [name...]
  Write a test challenge for each dns name and request it over http to make
  sure the daemon is reachable and serving the challenge directory
`
}

func (c *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	conf, status := loadConfig(args)
	if status != subcommands.ExitSuccess {
		return status
	}
	warnUnknownCerts(conf, f.Args())

	prov := http_acme.NewChallDirProvider(conf.ChallDir)
	client := &http.Client{
		Timeout: c.timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	exit := subcommands.ExitSuccess
	for cert := range conf.FilterCerts(config.NewFilter(f.Args()...)) {
		for _, domain := range cert.DnsNames {
			err := prov.Check(ctx, client, domain, c.port)
			if err != nil {
				logger.Logger.Error("Challenge check failed", "cert", cert.Name, "domain", domain, "err", err)
				exit = subcommands.ExitFailure
				continue
			}
			logger.Logger.Info("Challenge check passed", "cert", cert.Name, "domain", domain)
		}
	}
	return exit
}
