// Package daemon runs the ordered startup sequence of the challenge server.
//
// Every step can fail and a failure stops the sequence, there is no retry and
// no way back to an earlier state. The listening socket is opened while still
// privileged and the server only starts using it after the privileges have
// been dropped.
package daemon

import (
	"errors"
	"fmt"
	"github.com/1f349/acme-redirect/config"
	"github.com/1f349/acme-redirect/logger"
	"net"
)

type State int

const (
	Unconfigured State = iota
	ConfigLoaded
	DirectorySetup
	WorkingDirectoryChanged
	SocketBound
	PrivilegeDropped
	Serving
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case ConfigLoaded:
		return "config loaded"
	case DirectorySetup:
		return "directory setup"
	case WorkingDirectoryChanged:
		return "working directory changed"
	case SocketBound:
		return "socket bound"
	case PrivilegeDropped:
		return "privilege dropped"
	case Serving:
		return "serving"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var ErrAlreadyStarted = errors.New("bootstrap already started")

// ChdirError is returned when the working directory cannot be changed to the
// challenge directory
type ChdirError struct {
	Path string
	Err  error
}

func (e *ChdirError) Error() string {
	return fmt.Sprintf("failed to change working directory to %q: %s", e.Path, e.Err)
}

func (e *ChdirError) Unwrap() error { return e.Err }

// BindError is returned when the listening socket cannot be opened
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to bind socket %q: %s", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// PrivilegeDropError is returned when the privileges could not be dropped.
// The server is never started after this error.
type PrivilegeDropError struct {
	Err error
}

func (e *PrivilegeDropError) Error() string {
	return fmt.Sprintf("failed to drop privileges: %s", e.Err)
}

func (e *PrivilegeDropError) Unwrap() error { return e.Err }

// Steps contains the operation for each state transition
type Steps struct {
	LoadConfig     func() (*config.Config, error)
	Setup          func(conf *config.Config) error
	Chdir          func(dir string) error
	Listen         func(addr string) (net.Listener, error)
	DropPrivileges func() error

	// Serve is called with the bound listener once every other step has
	// succeeded, it should not block
	Serve func(conf *config.Config, ln net.Listener)
}

type Bootstrap struct {
	addr  string
	steps Steps
	state State

	// OnTransition is called after every successful state change
	OnTransition func(State)

	conf *config.Config
}

func New(addr string, steps Steps) *Bootstrap {
	return &Bootstrap{addr: addr, steps: steps}
}

// State returns the last state reached by Start
func (b *Bootstrap) State() State { return b.state }

// Config returns the loaded config or nil before the config has been loaded
func (b *Bootstrap) Config() *config.Config { return b.conf }

func (b *Bootstrap) transition(s State) {
	b.state = s
	logger.Logger.Debug("Bootstrap state changed", "state", s)
	if b.OnTransition != nil {
		b.OnTransition(s)
	}
}

// Start runs each step in order and returns the error of the first failing
// step. Start may only be called once.
func (b *Bootstrap) Start() error {
	if b.state != Unconfigured {
		return ErrAlreadyStarted
	}

	conf, err := b.steps.LoadConfig()
	if err != nil {
		return err
	}
	b.conf = conf
	b.transition(ConfigLoaded)

	err = b.steps.Setup(conf)
	if err != nil {
		return err
	}
	b.transition(DirectorySetup)

	err = b.steps.Chdir(conf.ChallDir)
	if err != nil {
		return &ChdirError{Path: conf.ChallDir, Err: err}
	}
	b.transition(WorkingDirectoryChanged)

	ln, err := b.steps.Listen(b.addr)
	if err != nil {
		return &BindError{Addr: b.addr, Err: err}
	}
	b.transition(SocketBound)

	err = b.steps.DropPrivileges()
	if err != nil {
		_ = ln.Close()
		return &PrivilegeDropError{Err: err}
	}
	b.transition(PrivilegeDropped)

	b.steps.Serve(conf, ln)
	b.transition(Serving)
	return nil
}
