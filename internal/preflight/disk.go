package preflight

import (
	"fmt"
	"syscall"
)

// MinDiskSpaceBytes is the free space below which a warning is raised (1 MB).
const MinDiskSpaceBytes = 1024 * 1024

// CheckDiskSpace checks the free space on the filesystem holding path.
// Low space only warns: an index is a few kilobytes.
func (c *Checker) CheckDiskSpace(path string) CheckResult {
	result := CheckResult{
		Name: "disk_space",
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("failed to check disk space: %v", err)
		return result
	}

	availableBytes := stat.Bavail * uint64(stat.Bsize)
	result.Message = fmt.Sprintf("%s free (minimum: %s)", formatBytes(availableBytes), formatBytes(c.minDiskBytes))

	if availableBytes < c.minDiskBytes {
		result.Status = StatusWarn
		return result
	}

	result.Status = StatusPass
	return result
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
		TB = 1024 * GB
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
