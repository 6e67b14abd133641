// Package setup prepares the data directory while the process still has root
// privileges.
package setup

import (
	"errors"
	"fmt"
	"github.com/1f349/acme-redirect/config"
	"github.com/1f349/acme-redirect/logger"
	"io/fs"
)

// DataDirMode is the permission mode enforced on the data directory
const DataDirMode fs.FileMode = 0750

// SetupError is returned when the data directory cannot be prepared
type SetupError struct {
	Op   string
	Path string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup: %s %q: %s", e.Op, e.Path, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// Metadata is the subset of file information which setup enforces
type Metadata struct {
	Mode fs.FileMode
	Uid  int
	Gid  int
}

// Filesystem contains the operations used to prepare the data directory
type Filesystem interface {
	Stat(path string) (Metadata, error)
	Mkdir(path string, mode fs.FileMode) error
	Chmod(path string, mode fs.FileMode) error
	Chown(path string, uid, gid int) error
}

// Resolver looks up system users and groups
type Resolver interface {
	LookupUser(name string) (uid int, err error)
	LookupGroup(name string) (gid int, err error)
}

// PlanChmod returns the mode to apply and true if the permission bits of md
// differ from mode
func PlanChmod(md Metadata, mode fs.FileMode) (fs.FileMode, bool) {
	if md.Mode.Perm() == mode.Perm() {
		return 0, false
	}
	return mode.Perm(), true
}

// PlanChown returns the owner to apply and true if md is owned by another user
func PlanChown(md Metadata, uid int) (int, bool) {
	return uid, md.Uid != uid
}

// PlanChgrp returns the group to apply and true if md belongs to another group
func PlanChgrp(md Metadata, gid int) (int, bool) {
	return gid, md.Gid != gid
}

// Run creates the data directory if required then enforces its permissions
// and ownership. The owner is only changed when user is not empty and the
// group is only changed when the config has a group.
func Run(fsys Filesystem, ids Resolver, conf *config.Config, user string) error {
	path := conf.DataDir

	_, err := fsys.Stat(path)
	switch {
	case err == nil:
		break
	case errors.Is(err, fs.ErrNotExist):
		logger.Logger.Debug("Creating data directory", "path", path)
		if err := fsys.Mkdir(path, DataDirMode); err != nil {
			return &SetupError{Op: "create data directory", Path: path, Err: err}
		}
	default:
		return &SetupError{Op: "stat data directory", Path: path, Err: err}
	}

	md, err := fsys.Stat(path)
	if err != nil {
		return &SetupError{Op: "stat data directory", Path: path, Err: err}
	}

	if mode, ok := PlanChmod(md, DataDirMode); ok {
		logger.Logger.Debug("Changing data directory mode", "path", path, "from", md.Mode.Perm(), "to", mode)
		if err := fsys.Chmod(path, mode); err != nil {
			return &SetupError{Op: "set permissions of data directory", Path: path, Err: err}
		}
	}

	if user != "" {
		uid, err := ids.LookupUser(user)
		if err != nil {
			return &SetupError{Op: "resolve user", Path: user, Err: err}
		}
		if uid, ok := PlanChown(md, uid); ok {
			logger.Logger.Debug("Changing data directory owner", "path", path, "uid", uid)
			if err := fsys.Chown(path, uid, -1); err != nil {
				return &SetupError{Op: "set owner of data directory", Path: path, Err: err}
			}
		}
	}

	if conf.Group != "" {
		gid, err := ids.LookupGroup(conf.Group)
		if err != nil {
			return &SetupError{Op: "resolve group", Path: conf.Group, Err: err}
		}
		if gid, ok := PlanChgrp(md, gid); ok {
			logger.Logger.Debug("Changing data directory group", "path", path, "gid", gid)
			if err := fsys.Chown(path, -1, gid); err != nil {
				return &SetupError{Op: "set group of data directory", Path: path, Err: err}
			}
		}
	}

	return nil
}
