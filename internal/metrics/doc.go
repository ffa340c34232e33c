// Package metrics samples the local machine through gopsutil.
//
// Each sampler implements refresh.Source and produces an immutable
// snapshot per cycle. Individual readings are Field values: a reading that
// fails (permission denied, not supported on this platform, process gone)
// is carried as an unknown field and rendered as "N/A" rather than failing
// the whole snapshot.
//
// Rates and CPU percentages are deltas between the previous snapshot and
// the current one, so they are unknown on the first cycle of a session.
package metrics
