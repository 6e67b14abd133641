//go:build !linux

package sandbox

// DropPrivileges always fails on platforms without a verified implementation
func DropPrivileges(*Identity) error {
	return ErrUnsupported
}
