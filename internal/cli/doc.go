// Package cli implements the termkit command-line interface.
//
// Each tool is a Cobra command registered from its file's init function.
// One-shot commands take a snapshot through metrics.Once and print it as
// tables, or as a JSON envelope with --json. Live subcommands share
// runLive, which resolves timing from flags over config, drives
// monitor.Run and records the finished session in the history store.
//
//	termkit sys [live]                 host, CPU, memory and disk
//	termkit procs [live|kill <pid>]    process table
//	termkit net [live|conns|check|ping]
//	termkit files [dir]                directory listing
//	termkit history [prune]            recorded live sessions
//	termkit serve                      snapshots over HTTP
//	termkit init | config [show|path|set]
//
// Running termkit with no arguments in a terminal opens a menu of the
// tools; elsewhere it prints help.
//
// Global flags (--config, --verbose, --no-color, --json) are defined on
// the root command. The metrics provider, clock and prompts are package
// variables so tests can swap in fakes.
package cli
