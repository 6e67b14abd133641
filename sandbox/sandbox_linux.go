package sandbox

import (
	"fmt"
	"github.com/1f349/acme-redirect/logger"
	"golang.org/x/sys/unix"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"syscall"
)

// taskDir lists every thread of the process
const taskDir = "/proc/self/task"

// DropPrivileges switches every thread of the process to id. The change is
// verified afterwards and any difference is returned as an error. When id is
// nil the process must already be unprivileged.
func DropPrivileges(id *Identity) error {
	if id == nil {
		if unix.Geteuid() == 0 || unix.Getuid() == 0 {
			return ErrStillRoot
		}
		logger.Logger.Debug("No user to drop to, already unprivileged", "uid", unix.Getuid())
		return nil
	}

	logger.Logger.Debug("Dropping privileges", "user", id.Name, "uid", id.Uid, "gid", id.Gid)

	// the syscall package applies these to all threads, golang.org/x/sys/unix
	// only changes the calling thread for setgroups
	if err := syscall.Setgroups([]int{id.Gid}); err != nil {
		return fmt.Errorf("setgroups: %w", err)
	}
	if err := syscall.Setresgid(id.Gid, id.Gid, id.Gid); err != nil {
		return fmt.Errorf("setresgid: %w", err)
	}
	if err := syscall.Setresuid(id.Uid, id.Uid, id.Uid); err != nil {
		return fmt.Errorf("setresuid: %w", err)
	}
	return verify(id)
}

func verify(id *Identity) error {
	ruid, euid, suid := unix.Getresuid()
	if ruid != id.Uid || euid != id.Uid || suid != id.Uid {
		return fmt.Errorf("uid is %d/%d/%d after dropping privileges, expected %d", ruid, euid, suid, id.Uid)
	}
	rgid, egid, sgid := unix.Getresgid()
	if rgid != id.Gid || egid != id.Gid || sgid != id.Gid {
		return fmt.Errorf("gid is %d/%d/%d after dropping privileges, expected %d", rgid, egid, sgid, id.Gid)
	}
	groups, err := unix.Getgroups()
	if err != nil {
		return fmt.Errorf("getgroups: %w", err)
	}
	if !onlyGroup(groups, id.Gid) {
		return fmt.Errorf("groups are %v after dropping privileges, expected [%d]", groups, id.Gid)
	}
	if err := verifyTasks(taskDir, id); err != nil {
		return err
	}
	if id.Uid != 0 && unix.Setuid(0) == nil {
		return fmt.Errorf("root privileges could be regained after dropping privileges")
	}
	return nil
}

// verifyTasks checks the credentials of every thread listed in dir
func verifyTasks(dir string, id *Identity) error {
	tasks, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list threads: %w", err)
	}
	for _, task := range tasks {
		raw, err := os.ReadFile(filepath.Join(dir, task.Name(), "status"))
		if err != nil {
			// the thread exited after listing
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to read thread %s status: %w", task.Name(), err)
		}
		creds, err := parseTaskStatus(raw)
		if err != nil {
			return fmt.Errorf("thread %s: %w", task.Name(), err)
		}
		if !creds.matches(id) {
			return fmt.Errorf("thread %s has uid %v gid %v groups %v after dropping privileges, expected %d/%d", task.Name(), creds.uids, creds.gids, creds.groups, id.Uid, id.Gid)
		}
	}
	return nil
}

// taskCreds holds the Uid, Gid and Groups lines of a thread status file
type taskCreds struct {
	uids   []int
	gids   []int
	groups []int
}

func (t taskCreds) matches(id *Identity) bool {
	return len(t.uids) > 0 && len(t.gids) > 0 &&
		allEqual(t.uids, id.Uid) &&
		allEqual(t.gids, id.Gid) &&
		onlyGroup(t.groups, id.Gid)
}

func parseTaskStatus(raw []byte) (taskCreds, error) {
	var creds taskCreds
	var seenGroups bool
	for _, line := range strings.Split(string(raw), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		var dst *[]int
		switch key {
		case "Uid":
			dst = &creds.uids
		case "Gid":
			dst = &creds.gids
		case "Groups":
			dst = &creds.groups
			seenGroups = true
		default:
			continue
		}
		for _, field := range strings.Fields(value) {
			n, err := strconv.Atoi(field)
			if err != nil {
				return taskCreds{}, fmt.Errorf("invalid %s value %q", key, field)
			}
			*dst = append(*dst, n)
		}
	}
	if len(creds.uids) == 0 || len(creds.gids) == 0 || !seenGroups {
		return taskCreds{}, fmt.Errorf("missing credentials in status")
	}
	return creds, nil
}

func allEqual(values []int, want int) bool {
	for _, i := range values {
		if i != want {
			return false
		}
	}
	return true
}

// onlyGroup reports whether groups is empty or holds nothing but gid
func onlyGroup(groups []int, gid int) bool {
	return !slices.ContainsFunc(groups, func(i int) bool { return i != gid })
}
