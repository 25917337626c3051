//go:build linux

package helpers

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// GetTotalSystemMemoryMB reads MemTotal from /proc/meminfo. Returns 0 when
// unavailable.
func GetTotalSystemMemoryMB() int {
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[0] != "MemTotal:" {
			continue
		}
		kb, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0
		}
		return kb / 1024
	}
	return 0
}
