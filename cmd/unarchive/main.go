package main

import (
	"context"
	"errors"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/unarchive/internal/cmd"
)

func main() {
	_, err := cmd.NewParser().Parse()
	exit(err)
}

// exitCode is 130 when the run was interrupted, like a shell reports SIGINT.
func exitCode(err error) int {
	switch {
	case err == nil, flags.WroteHelp(err):
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}
