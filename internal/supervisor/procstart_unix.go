//go:build !windows

package supervisor

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	gopsproc "github.com/shirou/gopsutil/v4/process"
	sysconf "github.com/tklauser/go-sysconf"
)

// startTime returns the process start time using platform-native methods.
// Zero time when unavailable.
func startTime(pid int) time.Time {
	if pid <= 0 {
		return time.Time{}
	}
	var unix int64
	if runtime.GOOS == "linux" {
		unix = startUnixLinux(pid)
	} else {
		// Darwin/BSD via gopsutil (sysctl under the hood)
		if p, err := gopsproc.NewProcess(int32(pid)); err == nil {
			if ms, err := p.CreateTime(); err == nil && ms > 0 {
				unix = ms / 1000
			}
		}
	}
	if unix <= 0 {
		return time.Time{}
	}
	return time.Unix(unix, 0)
}

// startUnixLinux computes a stable start time from /proc without spawning
// external processes: starttime ticks from /proc/<pid>/stat plus btime
// from /proc/stat, scaled by SC_CLK_TCK.
func startUnixLinux(pid int) int64 {
	b, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/stat")
	if err != nil {
		return 0
	}
	line := string(b)
	// ") " terminates the comm field, which can itself contain spaces.
	end := strings.LastIndex(line, ") ")
	if end == -1 {
		return 0
	}
	parts := strings.Fields(strings.TrimSpace(line[end+2:]))
	// starttime is overall field 22 => index 19 after the comm field
	if len(parts) < 20 {
		return 0
	}
	startTicks, err := strconv.ParseInt(parts[19], 10, 64)
	if err != nil || startTicks <= 0 {
		return 0
	}

	f, err := os.Open("/proc/stat")
	if err != nil {
		return 0
	}
	defer func() { _ = f.Close() }()
	var btime int64
	s := bufio.NewScanner(f)
	for s.Scan() {
		if v, ok := strings.CutPrefix(s.Text(), "btime "); ok {
			btime, _ = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			break
		}
	}
	if btime == 0 {
		return 0
	}

	clk, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil || clk <= 0 {
		clk = 100
	}
	return btime + (startTicks / int64(clk))
}
