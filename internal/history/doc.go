// Package history records finished live sessions in a local SQLite
// database so `termkit history` can list past runs.
package history
