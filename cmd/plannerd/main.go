package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/simgebenzerr/planner-core/cmd/plannerd/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "plannerd",
		Short: "Planner core server",
		Long:  `Planner core hosts the task store, notification scheduler, session tracker and profile sync behind an HTTP API.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
