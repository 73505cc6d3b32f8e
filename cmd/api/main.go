package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	serve := newServeCommand()
	root := &cobra.Command{
		Use:           "helpdesk",
		Short:         "Helpdesk ticket service.",
		Long:          "Helpdesk ticket service: ticket lifecycle, comments, image attachments and an audit trail over a JSON API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve, newMigrateCommand(), newSeedCommand())
	return root
}
