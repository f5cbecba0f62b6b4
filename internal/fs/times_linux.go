//go:build linux

package fs

import (
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// timesOf reads access time from Stat_t and the birth time through statx.
// Filesystems without birth time report the status-change time instead.
func timesOf(path string, info os.FileInfo) Times {
	t := Times{
		Creation:   info.ModTime(),
		LastWrite:  info.ModTime(),
		LastAccess: info.ModTime(),
	}
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		t.LastAccess = time.Unix(st.Atim.Unix())
		t.Creation = time.Unix(st.Ctim.Unix())
	}

	var sx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_BTIME, &sx); err == nil && sx.Mask&unix.STATX_BTIME != 0 {
		t.Creation = time.Unix(sx.Btime.Sec, int64(sx.Btime.Nsec))
	}
	return t
}

// Linux offers no call to set a birth time; it is left as is.
func setCreationTime(string, time.Time) error {
	return nil
}
