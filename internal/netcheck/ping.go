package netcheck

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	tkerrors "github.com/r3dlabs/termkit/internal/errors"
)

// Runner runs a command and captures its output. A non-zero exit is
// reported through exitCode, not err.
type Runner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, exitCode int, err error)

// RunCommand is the Runner backed by os/exec.
func RunCommand(ctx context.Context, name string, args ...string) (stdout, stderr []byte, exitCode int, err error) {
	command := exec.CommandContext(ctx, name, args...)

	var outBuf, errBuf bytes.Buffer
	command.Stdout = &outBuf
	command.Stderr = &errBuf

	runErr := command.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return outBuf.Bytes(), errBuf.Bytes(), exitErr.ExitCode(), nil
		}
		return outBuf.Bytes(), errBuf.Bytes(), -1, tkerrors.WrapWithCode(runErr, tkerrors.ErrExec,
			fmt.Sprintf("Couldn't run %s", name),
			"Make sure it is installed and on your PATH.")
	}
	return outBuf.Bytes(), errBuf.Bytes(), 0, nil
}

// PingResult summarizes a ping run.
type PingResult struct {
	Host     string
	Sent     int
	Received int
	// Loss is the packet loss percentage.
	Loss float64
	// AvgRTT is zero when no reply arrived or the output had no rtt line.
	AvgRTT time.Duration
	OK     bool
	Output string
}

// Pinger runs the system ping command.
type Pinger struct {
	Run  Runner
	GOOS string
}

// NewPinger creates a Pinger for the current platform.
func NewPinger() *Pinger {
	return &Pinger{Run: RunCommand, GOOS: runtime.GOOS}
}

// Args returns the ping arguments for count echo requests.
func (p *Pinger) Args(host string, count int) []string {
	if p.GOOS == "windows" {
		return []string{"-n", strconv.Itoa(count), host}
	}
	return []string{"-c", strconv.Itoa(count), host}
}

// Ping sends count echo requests to host.
func (p *Pinger) Ping(ctx context.Context, host string, count int) (PingResult, error) {
	if count < 1 {
		count = 1
	}
	run := p.Run
	if run == nil {
		run = RunCommand
	}

	stdout, stderr, code, err := run(ctx, "ping", p.Args(host, count)...)
	if err != nil {
		return PingResult{Host: host}, err
	}

	res := ParsePingOutput(string(stdout))
	res.Host = host
	res.OK = code == 0 && res.Received > 0
	res.Output = string(stdout)
	if code != 0 && len(stderr) > 0 {
		res.Output = strings.TrimSpace(string(stderr))
	}
	return res, nil
}

var (
	// "4 packets transmitted, 4 received, 0% packet loss" (linux)
	// "4 packets transmitted, 4 packets received, 0.0% packet loss" (bsd)
	unixStats = regexp.MustCompile(`(\d+) packets transmitted, (\d+) (?:packets )?received.*?([\d.]+)% packet loss`)
	// "Packets: Sent = 4, Received = 4, Lost = 0 (0% loss)"
	windowsStats = regexp.MustCompile(`Sent = (\d+), Received = (\d+), Lost = \d+ \((\d+)% loss\)`)
	// "rtt min/avg/max/mdev = 0.030/0.045/0.061/0.010 ms"
	// "round-trip min/avg/max/stddev = 10.1/12.3/15.0/1.2 ms"
	unixRTT = regexp.MustCompile(`= [\d.]+/([\d.]+)/[\d.]+`)
	// "Average = 12ms"
	windowsRTT = regexp.MustCompile(`Average = (\d+)ms`)
)

// ParsePingOutput extracts the packet counts and average round trip from
// ping's summary lines. Unrecognised output yields a zero result.
func ParsePingOutput(out string) PingResult {
	var res PingResult

	if m := unixStats.FindStringSubmatch(out); m != nil {
		res.Sent, _ = strconv.Atoi(m[1])
		res.Received, _ = strconv.Atoi(m[2])
		res.Loss, _ = strconv.ParseFloat(m[3], 64)
	} else if m := windowsStats.FindStringSubmatch(out); m != nil {
		res.Sent, _ = strconv.Atoi(m[1])
		res.Received, _ = strconv.Atoi(m[2])
		res.Loss, _ = strconv.ParseFloat(m[3], 64)
	}

	if m := unixRTT.FindStringSubmatch(out); m != nil {
		if ms, err := strconv.ParseFloat(m[1], 64); err == nil {
			res.AvgRTT = time.Duration(ms * float64(time.Millisecond))
		}
	} else if m := windowsRTT.FindStringSubmatch(out); m != nil {
		if ms, err := strconv.Atoi(m[1]); err == nil {
			res.AvgRTT = time.Duration(ms) * time.Millisecond
		}
	}

	return res
}
