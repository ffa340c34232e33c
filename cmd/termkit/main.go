package main

import (
	"github.com/r3dlabs/termkit/internal/cli"
)

// Version info set via ldflags at build time:
//
//	go build -o termkit ./cmd/termkit -ldflags "-X main.version=1.2.0 -X main.commit=$(git rev-parse --short HEAD) -X main.date=$(date -u +%Y-%m-%d)"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	cli.Execute()
}
