package netcheck

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	tkerrors "github.com/r3dlabs/termkit/internal/errors"
)

// Defaults used when a Checker field is zero.
const (
	DefaultTimeout = 3 * time.Second
	DefaultWorkers = 16
	maxPort        = 65535
)

// FailReason categorizes why a port check failed.
type FailReason int

const (
	FailNone FailReason = iota
	FailUnknown
	FailTimeout
	FailRefused
	FailUnreachable
	FailDNS
)

// String returns a human-readable description of the failure reason.
func (r FailReason) String() string {
	switch r {
	case FailNone:
		return "open"
	case FailTimeout:
		return "timed out"
	case FailRefused:
		return "closed"
	case FailUnreachable:
		return "unreachable"
	case FailDNS:
		return "unknown host"
	default:
		return "error"
	}
}

// Result is the outcome of checking one port.
type Result struct {
	Host    string
	Port    int
	Open    bool
	Latency time.Duration
	Reason  FailReason
	Err     error
}

// Address returns host:port.
func (r Result) Address() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// Service returns the well-known service name for the port, or "".
func (r Result) Service() string {
	return services[r.Port]
}

var services = map[int]string{
	21: "FTP", 22: "SSH", 23: "Telnet", 25: "SMTP", 53: "DNS",
	80: "HTTP", 110: "POP3", 143: "IMAP", 443: "HTTPS", 993: "IMAPS",
	995: "POP3S", 1433: "MSSQL", 3306: "MySQL", 3389: "RDP",
	5432: "PostgreSQL", 6379: "Redis", 8080: "HTTP-alt", 27017: "MongoDB",
}

// DialFunc opens a connection; net.Dialer.DialContext satisfies it.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Checker probes TCP ports with a bounded number of concurrent dials.
type Checker struct {
	Timeout time.Duration
	Workers int
	Dial    DialFunc
}

// New creates a Checker with the given per-port timeout and worker cap.
func New(timeout time.Duration, workers int) *Checker {
	return &Checker{Timeout: timeout, Workers: workers}
}

// Check dials host:port once.
func (c *Checker) Check(ctx context.Context, host string, port int) Result {
	res := Result{Host: host, Port: port}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	dial := c.Dial
	if dial == nil {
		d := &net.Dialer{}
		dial = d.DialContext
	}

	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	conn, err := dial(dctx, "tcp", res.Address())
	if err != nil {
		res.Reason = categorize(err)
		res.Err = err
		return res
	}
	_ = conn.Close()

	res.Open = true
	res.Latency = time.Since(start)
	return res
}

// CheckPorts checks every port on host. Results come back in the order of
// ports regardless of completion order. Cancelling ctx stops queued checks;
// those report FailTimeout with ctx's error.
func (c *Checker) CheckPorts(ctx context.Context, host string, ports []int) []Result {
	results := make([]Result, len(ports))
	if len(ports) == 0 {
		return results
	}

	workers := c.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(ports) {
		workers = len(ports)
	}

	queue := make(chan int, len(ports))
	for i := range ports {
		queue <- i
	}
	close(queue)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				if err := ctx.Err(); err != nil {
					results[i] = Result{Host: host, Port: ports[i], Reason: FailTimeout, Err: err}
					continue
				}
				results[i] = c.Check(ctx, host, ports[i])
			}
		}()
	}
	wg.Wait()

	return results
}

// OpenCount returns how many results are open.
func OpenCount(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Open {
			n++
		}
	}
	return n
}

// ParsePorts parses port arguments. Each argument may be a single port
// ("443"), a comma list ("22,80") or an inclusive range ("8000-8010").
// Duplicates are removed and the result is sorted.
func ParsePorts(args []string) ([]int, error) {
	seen := make(map[int]bool)
	var ports []int
	add := func(p int) {
		if !seen[p] {
			seen[p] = true
			ports = append(ports, p)
		}
	}

	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			lo, hi, err := parseRange(part)
			if err != nil {
				return nil, tkerrors.WrapWithCode(err, tkerrors.ErrNet,
					fmt.Sprintf("Invalid port %q", part),
					"Use a number between 1 and 65535, a list like 22,80 or a range like 8000-8010.")
			}
			for p := lo; p <= hi; p++ {
				add(p)
			}
		}
	}

	if len(ports) == 0 {
		return nil, tkerrors.New(tkerrors.ErrNet, "No ports given", "Pass at least one port, e.g. 'termkit net check example.com 443'.")
	}
	sort.Ints(ports)
	return ports, nil
}

func parseRange(s string) (int, int, error) {
	if from, to, ok := strings.Cut(s, "-"); ok {
		lo, err := parsePort(from)
		if err != nil {
			return 0, 0, err
		}
		hi, err := parsePort(to)
		if err != nil {
			return 0, 0, err
		}
		if lo > hi {
			return 0, 0, fmt.Errorf("range %d-%d is reversed", lo, hi)
		}
		return lo, hi, nil
	}
	p, err := parsePort(s)
	return p, p, err
}

func parsePort(s string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if p < 1 || p > maxPort {
		return 0, fmt.Errorf("port %d out of range", p)
	}
	return p, nil
}

// categorize maps a dial error onto a FailReason.
func categorize(err error) FailReason {
	if err == nil {
		return FailNone
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FailDNS
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return FailTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailTimeout
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout"):
		return FailTimeout
	case strings.Contains(errStr, "connection refused"):
		return FailRefused
	case strings.Contains(errStr, "no route to host"),
		strings.Contains(errStr, "network is unreachable"),
		strings.Contains(errStr, "host is down"):
		return FailUnreachable
	default:
		return FailUnknown
	}
}
