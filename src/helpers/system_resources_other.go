//go:build !linux

package helpers

// GetTotalSystemMemoryMB is only implemented on linux.
func GetTotalSystemMemoryMB() int {
	return 0
}
