// Package netcheck probes remote hosts: concurrent TCP port checks bounded
// by a worker cap and a per-port timeout, plus a wrapper around the system
// ping command.
package netcheck
