package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "helpdesk",
		Short: "Help-desk ticket service",
		Long:  `Ticket lifecycle, routing and assignment API with migration and seeding tools.`,
		// Running the binary without a subcommand starts the server.
		RunE: runServe,
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newSeedCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
