// Package refresh drives live monitoring sessions.
//
// A Session repeatedly samples a Source, hands each snapshot to a Renderer,
// and waits one poll interval before the next cycle. It ends when the
// duration limit elapses, when its context is cancelled, or when the source
// turns out to be unavailable before the first successful sample:
//
//	Idle → Running → {Completed | Cancelled | Aborted}
//
// Per-cycle sample and render failures never leave Running. They are
// reported and the next cycle runs on schedule.
//
// The wait between cycles races a timer against ctx.Done(), so a quit
// request is observed immediately rather than after the full interval.
package refresh
