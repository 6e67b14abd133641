//go:build unix

package setup

import (
	"golang.org/x/sys/unix"
	"io/fs"
	"os"
	"os/user"
	"strconv"
)

// OSFilesystem implements Filesystem using the real filesystem
type OSFilesystem struct{}

var _ Filesystem = OSFilesystem{}

func (OSFilesystem) Stat(path string) (Metadata, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return Metadata{}, &fs.PathError{Op: "stat", Path: path, Err: err}
	}
	return Metadata{
		Mode: fs.FileMode(st.Mode & 0o777),
		Uid:  int(st.Uid),
		Gid:  int(st.Gid),
	}, nil
}

func (OSFilesystem) Mkdir(path string, mode fs.FileMode) error { return os.Mkdir(path, mode) }
func (OSFilesystem) Chmod(path string, mode fs.FileMode) error { return os.Chmod(path, mode) }
func (OSFilesystem) Chown(path string, uid, gid int) error     { return os.Chown(path, uid, gid) }

// OSResolver implements Resolver using the system user database
type OSResolver struct{}

var _ Resolver = OSResolver{}

func (OSResolver) LookupUser(name string) (int, error) {
	u, err := user.Lookup(name)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(u.Uid)
}

func (OSResolver) LookupGroup(name string) (int, error) {
	g, err := user.LookupGroup(name)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(g.Gid)
}
