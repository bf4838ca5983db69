package cmd

import (
	"context"
	"log"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/gmad/internal/config"
)

type Gmad struct {
	Profile string  `short:"p" long:"profile" description:"override the AWS profile used for S3 inputs, taking precedence over .gmad"`
	Extract Extract `command:"extract" alias:"x" description:"extract addons to a directory"`
	List    List    `command:"list" alias:"ls" description:"list the files of addons without extracting them"`
}

// NewParser creates the parser for all commands.
//
// Before any command is executed, the .gmad configuration file is loaded from the working directory or its closest
// ancestor.
func NewParser() (*flags.Parser, error) {
	opts := &Gmad{}

	p := flags.NewNamedParser("gmad", flags.Default)
	if _, err := p.AddGroup("Global Options", "", opts); err != nil {
		return nil, err
	}

	p.CommandHandler = func(command flags.Commander, args []string) error {
		name, err := config.LoadProfile(context.Background(), opts.Profile)
		if err != nil {
			return err
		}
		if name != "" {
			log.Printf(`loaded configuration from "%s"`, name)
		}

		return command.Execute(args)
	}

	return p, nil
}
