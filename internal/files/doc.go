// Package files takes snapshots of a directory for `termkit files`.
//
// Listings are read once; there is no browsing, copying or moving.
package files
