// Package cmd contains the commands of the unarchive CLI.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/unarchive/internal/config"
)

// Unarchive is the root of the CLI.
type Unarchive struct {
	Profile string  `short:"p" long:"profile" description:"override the AWS profile used to download s3:// archives"`
	List    List    `command:"list" alias:"ls" alias:"l" description:"list the entries of archives"`
	Extract Extract `command:"extract" alias:"x" description:"extract archives"`
}

// NewParser returns the parser of the CLI.
//
// Before any command executes, the .unarchive configuration file is loaded into config.DefaultLoader.
func NewParser() *flags.Parser {
	opts := &Unarchive{}

	p := flags.NewNamedParser("unarchive", flags.Default)
	if _, err := p.AddGroup("Global Options", "", opts); err != nil {
		panic(err)
	}

	p.CommandHandler = func(command flags.Commander, args []string) error {
		if command == nil {
			return nil
		}

		name, err := config.LoadProfile(context.Background(), opts.Profile)
		if err != nil {
			return fmt.Errorf(`load config "%s" error: %w`, name, err)
		}
		if name != "" {
			_, _ = fmt.Fprintf(os.Stderr, "using config %s\n", name)
		}

		return command.Execute(args)
	}

	return p
}
