package main

import (
	"fmt"
	"runtime"
)

// Build-time variables injected via linker flags:
//
//	go build -ldflags "-X main.Version=$(git describe --tags) -X main.Commit=$(git rev-parse --short HEAD)"
//
// Version and Commit also key the output cache, so a rebuilt tool never
// reuses outputs of an older one.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func printVersion() {
	fmt.Printf("exprlower %s (%s/%s)\n", Version, runtime.GOOS, runtime.GOARCH)
	if Commit != "unknown" {
		fmt.Printf("  commit: %s\n", Commit)
	}
	if BuildDate != "unknown" {
		fmt.Printf("  built:  %s\n", BuildDate)
	}
}
