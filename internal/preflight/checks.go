package preflight

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"compressr/internal/config"
	"compressr/internal/deps"
)

const versionTimeout = 10 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the filesystem holding path has at least need
// bytes available to unprivileged users.
func CheckFreeSpace(name, path string, need int64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	avail := stat.Bavail * uint64(stat.Bsize)
	if need > 0 && avail < uint64(need) {
		return Result{Name: name, Detail: fmt.Sprintf("%s free, %s needed", humanize.Bytes(avail), humanize.Bytes(uint64(need)))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s free", humanize.Bytes(avail))}
}

// CheckTool resolves binary and reports its version line.
func CheckTool(ctx context.Context, name, binary string) Result {
	return checkResolved(ctx, deps.Resolve(deps.Requirement{Name: name, Command: binary}))
}

func checkResolved(ctx context.Context, status deps.Status) Result {
	name := status.Name
	if !status.Available {
		return Result{Name: name, Detail: status.Detail}
	}
	checkCtx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	version, err := deps.Version(checkCtx, status.Path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", status.Path, err)}
	}
	return Result{Name: name, Passed: true, Detail: version}
}

// CheckSystemDeps evaluates the external binaries for the given config.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries([]deps.Requirement{
		{
			Name:    "FFmpeg",
			Command: cfg.FFmpegBinary(),
			Purpose: "encoding passes",
		},
		{
			Name:    "FFprobe",
			Command: cfg.FFprobeBinary(),
			Purpose: "frame counts and duration",
		},
	})
}
