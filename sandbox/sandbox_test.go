package sandbox

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"os/user"
	"runtime"
	"strconv"
	"testing"
)

func TestResolve(t *testing.T) {
	current, err := user.Current()
	require.NoError(t, err)

	id, err := Resolve(current.Username)
	require.NoError(t, err)
	assert.Equal(t, current.Username, id.Name)
	assert.Equal(t, current.Uid, strconv.Itoa(id.Uid))
	assert.Equal(t, current.Gid, strconv.Itoa(id.Gid))

	_, err = Resolve("acme-redirect-missing-user")
	assert.Error(t, err)
}

func TestDropPrivileges_NoUser(t *testing.T) {
	if runtime.GOOS != "linux" {
		assert.ErrorIs(t, DropPrivileges(nil), ErrUnsupported)
		return
	}
	if os.Geteuid() == 0 {
		assert.ErrorIs(t, DropPrivileges(nil), ErrStillRoot)
		return
	}
	assert.NoError(t, DropPrivileges(nil))
}
