package metrics

import (
	"context"
	"errors"
	"fmt"
	"os/user"
	"sort"
	"strings"
	"time"

	"github.com/r3dlabs/termkit/internal/logger"
)

// SortKey orders the process table.
type SortKey string

const (
	SortCPU    SortKey = "cpu"
	SortMemory SortKey = "memory"
	SortName   SortKey = "name"
	SortPID    SortKey = "pid"
)

// ParseSortKey validates a sort key from flags or config.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(s)); k {
	case SortCPU, SortMemory, SortName, SortPID:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q (use cpu, memory, name or pid)", s)
	}
}

// Restricted-process policies.
const (
	// RestrictedShow keeps rows whose details are denied, with N/A cells.
	RestrictedShow = "show"
	// RestrictedHide drops rows whose CPU or memory reading is denied.
	RestrictedHide = "hide"
)

// ProcessQuery selects and orders the rows of a ProcessSnapshot.
type ProcessQuery struct {
	Sort    SortKey
	Reverse bool

	// Filter keeps processes whose name contains it, case-insensitively.
	Filter string

	// User keeps only processes owned by this username when set.
	User string

	// Limit caps the number of rows; zero means no cap.
	Limit int

	// Restricted is RestrictedShow or RestrictedHide.
	Restricted string
}

// CurrentUsername returns the name of the user running termkit.
func CurrentUsername() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// ProcessRow is one process in a snapshot.
type ProcessRow struct {
	PID      int32
	Name     Field[string]
	Username Field[string]
	Cmdline  Field[string]
	// CPU is utilisation since the previous snapshot.
	CPU    Field[float64]
	Memory Field[float64]
	RSS    Field[uint64]
	Status Field[string]
}

// Restricted reports whether any reading of the row was permission-denied.
func (r ProcessRow) Restricted() bool {
	return r.CPU.Denied() || r.Memory.Denied() || r.RSS.Denied() || r.Username.Denied() || r.Cmdline.Denied()
}

// ProcessSnapshot is one capture of the process table.
type ProcessSnapshot struct {
	TakenAt time.Time

	// Total counts every process seen, before filtering.
	Total int
	// Statuses counts processes by gopsutil status ("running", "sleep", ...).
	Statuses map[string]int
	// Restricted counts processes with at least one denied reading.
	Restricted int
	// Matched counts processes that passed the filter, before Limit.
	Matched int

	Rows  []ProcessRow
	Query ProcessQuery
}

// tracked is a process handle kept across cycles with its static readings.
type tracked struct {
	handle  ProcessHandle
	name    Field[string]
	user    Field[string]
	cmdline Field[string]
	// created is the process start time in ms since the epoch, 0 if unknown.
	created int64
}

// ProcessSampler produces ProcessSnapshots. Process handles are cached per
// PID for the lifetime of the session so CPU usage is a per-cycle delta.
type ProcessSampler struct {
	backend Backend
	query   ProcessQuery
	log     logger.Logger

	handles map[int32]*tracked
}

// NewProcessSampler creates a sampler that applies q to every snapshot.
func NewProcessSampler(backend Backend, q ProcessQuery) *ProcessSampler {
	if q.Sort == "" {
		q.Sort = SortCPU
	}
	if q.Restricted == "" {
		q.Restricted = RestrictedShow
	}
	return &ProcessSampler{
		backend: backend,
		query:   q,
		log:     logger.NewEnvLogger("[metrics]"),
	}
}

// Open probes the process list.
func (s *ProcessSampler) Open(ctx context.Context) error {
	if _, err := s.backend.Pids(ctx); err != nil {
		return unavailable("process list", err)
	}
	s.handles = make(map[int32]*tracked)
	return nil
}

// Sample captures a ProcessSnapshot.
func (s *ProcessSampler) Sample(ctx context.Context, prev *ProcessSnapshot) (ProcessSnapshot, error) {
	pids, err := s.backend.Pids(ctx)
	if err != nil {
		return ProcessSnapshot{}, fmt.Errorf("process list: %w", Classify(err))
	}
	if s.handles == nil {
		s.handles = make(map[int32]*tracked)
	}

	snap := ProcessSnapshot{
		TakenAt:  s.backend.now(),
		Statuses: make(map[string]int),
		Query:    s.query,
	}

	seen := make(map[int32]bool, len(pids))
	rows := make([]ProcessRow, 0, len(pids))
	for _, pid := range pids {
		if ctx.Err() != nil {
			return ProcessSnapshot{}, ctx.Err()
		}

		row, ok := s.readProcess(ctx, pid)
		if !ok {
			continue
		}
		seen[pid] = true
		snap.Total++
		if row.Status.OK() {
			snap.Statuses[row.Status.Value]++
		}
		if row.Restricted() {
			snap.Restricted++
		}
		if s.query.matches(row) {
			rows = append(rows, row)
		}
	}

	for pid := range s.handles {
		if !seen[pid] {
			delete(s.handles, pid)
		}
	}

	SortRows(rows, s.query.Sort, s.query.Reverse)
	snap.Matched = len(rows)
	if s.query.Limit > 0 && len(rows) > s.query.Limit {
		rows = rows[:s.query.Limit]
	}
	snap.Rows = rows
	return snap, nil
}

// Close drops every cached handle.
func (s *ProcessSampler) Close() error {
	s.handles = nil
	return nil
}

// reused reports whether pid now belongs to a different process than the
// cached handle. A handle caches its create time, so a new one is opened.
func (s *ProcessSampler) reused(ctx context.Context, pid int32, t *tracked) bool {
	if t.created == 0 {
		return false
	}
	h, err := s.backend.NewProcess(ctx, pid)
	if err != nil {
		return false
	}
	created, err := h.CreateTimeWithContext(ctx)
	return err == nil && created != t.created
}

// readProcess reads one process. ok is false when the process vanished.
func (s *ProcessSampler) readProcess(ctx context.Context, pid int32) (ProcessRow, bool) {
	t, fresh := s.handles[pid], false
	if t != nil && s.reused(ctx, pid, t) {
		s.log.Debug("pid %d: reused by a new process", pid)
		delete(s.handles, pid)
		t = nil
	}
	if t == nil {
		h, err := s.backend.NewProcess(ctx, pid)
		if err != nil {
			s.log.Debug("pid %d: %v", pid, err)
			return ProcessRow{}, false
		}
		t = &tracked{handle: h}
		name, err := h.NameWithContext(ctx)
		t.name = FieldOf(name, err)
		username, err := h.UsernameWithContext(ctx)
		t.user = FieldOf(username, err)
		cmdline, err := h.CmdlineWithContext(ctx)
		t.cmdline = FieldOf(cmdline, err)
		if created, err := h.CreateTimeWithContext(ctx); err == nil {
			t.created = created
		}
		fresh = true
	}
	h := t.handle

	row := ProcessRow{
		PID:      pid,
		Name:     t.name,
		Username: t.user,
		Cmdline:  t.cmdline,
	}

	// The first Percent call on a handle only records a baseline.
	pct, err := h.PercentWithContext(ctx, 0)
	switch {
	case err != nil:
		row.CPU = Unknown[float64](err)
	case fresh:
		row.CPU = Unknown[float64](ErrNoBaseline)
	default:
		row.CPU = Known(pct)
	}
	if notRunning(row.CPU.Err) {
		delete(s.handles, pid)
		return ProcessRow{}, false
	}

	if mp, err := h.MemoryPercentWithContext(ctx); err != nil {
		row.Memory = Unknown[float64](err)
	} else {
		row.Memory = Known(float64(mp))
	}
	if mi, err := h.MemoryInfoWithContext(ctx); err != nil {
		row.RSS = Unknown[uint64](err)
	} else {
		row.RSS = Known(mi.RSS)
	}
	if st, err := h.StatusWithContext(ctx); err != nil {
		row.Status = Unknown[string](err)
	} else if len(st) == 0 {
		row.Status = Unknown[string](ErrUnavailable)
	} else {
		row.Status = Known(st[0])
	}

	s.handles[pid] = t
	return row, true
}

func notRunning(err error) bool {
	return err != nil && errors.Is(Classify(err), ErrNotRunning)
}

// matches applies the filter, user and restricted policy.
func (q ProcessQuery) matches(row ProcessRow) bool {
	if q.Filter != "" {
		if !row.Name.OK() || !strings.Contains(strings.ToLower(row.Name.Value), strings.ToLower(q.Filter)) {
			return false
		}
	}
	if q.User != "" {
		if !row.Username.OK() || !sameUser(row.Username.Value, q.User) {
			return false
		}
	}
	if q.Restricted == RestrictedHide && (row.CPU.Denied() || row.Memory.Denied()) {
		return false
	}
	return true
}

// sameUser compares usernames, ignoring a Windows DOMAIN\ prefix.
func sameUser(a, b string) bool {
	trim := func(s string) string {
		if i := strings.LastIndex(s, `\`); i >= 0 {
			return s[i+1:]
		}
		return s
	}
	return strings.EqualFold(trim(a), trim(b))
}

// SortRows orders rows by key. CPU and memory sort descending, name and
// PID ascending; reverse flips the order. Unknown readings sort last and
// ties fall back to PID.
func SortRows(rows []ProcessRow, key SortKey, reverse bool) {
	less := func(a, b ProcessRow) bool {
		switch key {
		case SortMemory:
			if a.Memory.Or(-1) != b.Memory.Or(-1) {
				return a.Memory.Or(-1) > b.Memory.Or(-1)
			}
		case SortName:
			an, bn := strings.ToLower(a.Name.Or("")), strings.ToLower(b.Name.Or(""))
			if an != bn {
				return an < bn
			}
		case SortPID:
		default:
			if a.CPU.Or(-1) != b.CPU.Or(-1) {
				return a.CPU.Or(-1) > b.CPU.Or(-1)
			}
		}
		return a.PID < b.PID
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if reverse {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}

// KillProcess asks the process to terminate (SIGTERM on Unix).
func KillProcess(ctx context.Context, backend Backend, pid int32) error {
	h, err := backend.NewProcess(ctx, pid)
	if err != nil {
		return fmt.Errorf("process %d: %w", pid, Classify(err))
	}
	if err := h.TerminateWithContext(ctx); err != nil {
		return fmt.Errorf("terminate process %d: %w", pid, Classify(err))
	}
	return nil
}
