// Package cli defines the Cobra commands for the console todo manager.
package cli

import (
	"fmt"
	"os"

	"github.com/Nabeerak/hackathon-todo/internal/console"
	"github.com/spf13/cobra"
)

var manager *console.Manager

var rootCmd = &cobra.Command{
	Use:   "todo",
	Short: "A simple todo manager for the terminal",
	Long: `Manage a personal todo list from the command line.
Todos are stored in ~/.console_todo/todos.json.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		store, err := console.DefaultStore()
		if err != nil {
			return err
		}
		manager, err = console.NewManager(store)
		return err
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
}
