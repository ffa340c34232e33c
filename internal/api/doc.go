// Package api serves termkit's snapshots over HTTP for `termkit serve`.
//
// Routes:
//
//	GET /healthz          liveness and uptime
//	GET /api/system       one SystemSnapshot (?partitions=true adds mounts)
//	GET /api/processes    one ProcessSnapshot (?sort=&reverse=&filter=&user=&limit=&restricted=)
//	GET /api/network      one NetworkSnapshot with interface addresses
//	GET /api/history      recorded live sessions (?tool=&limit=)
//
// Readings the provider cannot produce are encoded as {"error": "..."} in
// place of {"value": ...}.
package api
