package main

import (
	"context"
	"errors"
	"flag"
	"github.com/1f349/acme-redirect/config"
	"github.com/1f349/acme-redirect/daemon"
	"github.com/1f349/acme-redirect/http-acme"
	"github.com/1f349/acme-redirect/logger"
	"github.com/1f349/acme-redirect/sandbox"
	"github.com/1f349/acme-redirect/servers"
	"github.com/1f349/acme-redirect/setup"
	"github.com/google/subcommands"
	exitReload "github.com/mrmelon54/exit-reload"
	"net"
	"net/http"
	"os"
	"time"
)

type daemonCmd struct {
	bindAddr string
	user     string
}

func (d *daemonCmd) Name() string { return "daemon" }
func (d *daemonCmd) Synopsis() string {
	return "Answer acme challenges and redirect everything else to https"
}
func (d *daemonCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&d.bindAddr, "bind-addr", "[::]:80", "address to listen on")
	f.StringVar(&d.user, "user", "", "unprivileged user to switch to after binding the socket")
}
func (d *daemonCmd) Usage() string {
	return `daemon [-bind-addr <address>] [-user <name>]
  Prepare the data directory, bind the http socket, drop privileges and serve
  acme challenges from the challenge directory
`
}

func (d *daemonCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	inv, err := invocationArg(args)
	if err != nil {
		logger.Logger.Error("Invalid arguments", "err", err)
		return subcommands.ExitUsageError
	}

	logger.Logger.Info("Starting...")

	// challenge proofs are read relative to the working directory
	srv := servers.NewHttpServer(os.DirFS(http_acme.ChallsDir))

	b := daemon.New(d.bindAddr, daemon.Steps{
		LoadConfig: func() (*config.Config, error) {
			return config.Load(*inv)
		},
		Setup: func(conf *config.Config) error {
			return setup.Run(setup.OSFilesystem{}, setup.OSResolver{}, conf, d.user)
		},
		Chdir: os.Chdir,
		Listen: func(addr string) (net.Listener, error) {
			return net.Listen("tcp", addr)
		},
		DropPrivileges: d.dropPrivileges,
		Serve: func(conf *config.Config, ln net.Listener) {
			logger.Logger.Info("Serving acme challenges", "listen", ln.Addr(), "chall_dir", conf.ChallDir)
			go runBackgroundHttp(srv, ln)
		},
	})
	if err := b.Start(); err != nil {
		logger.Logger.Error("Failed to start daemon", "state", b.State(), "err", err)
		return subcommands.ExitFailure
	}

	exitReload.ExitReload("Acme Redirect", func() {
		logger.Logger.Warn("Reloading is not supported, restart to apply config changes")
	}, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})
	return subcommands.ExitSuccess
}

func (d *daemonCmd) dropPrivileges() error {
	var id *sandbox.Identity
	if d.user != "" {
		var err error
		id, err = sandbox.Resolve(d.user)
		if err != nil {
			return err
		}
	}
	return sandbox.DropPrivileges(id)
}

func runBackgroundHttp(srv *http.Server, ln net.Listener) {
	err := srv.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Logger.Fatal("Serve HTTP", "err", err)
	}
}
