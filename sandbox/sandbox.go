// Package sandbox drops the root privileges of the process once the
// privileged startup steps have completed.
package sandbox

import (
	"errors"
	"fmt"
	"os/user"
	"strconv"
)

var (
	ErrStillRoot   = errors.New("refusing to continue as root without a user to drop to")
	ErrUnsupported = errors.New("dropping privileges is not supported on this platform")
)

// Identity is the unprivileged user the process switches to
type Identity struct {
	Name string
	Uid  int
	Gid  int
}

// Resolve looks up the user and its primary group
func Resolve(name string) (*Identity, error) {
	u, err := user.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %q: %w", name, err)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return nil, fmt.Errorf("invalid uid for user %q: %w", name, err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return nil, fmt.Errorf("invalid gid for user %q: %w", name, err)
	}
	return &Identity{Name: name, Uid: uid, Gid: gid}, nil
}
