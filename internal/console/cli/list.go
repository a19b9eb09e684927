package cli

import (
	"fmt"

	"github.com/Nabeerak/hackathon-todo/internal/console"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List todos",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().Bool("pending", false, "Only pending todos")
	listCmd.Flags().Bool("completed", false, "Only completed todos")
}

func runList(cmd *cobra.Command, args []string) error {
	pending, _ := cmd.Flags().GetBool("pending")
	completed, _ := cmd.Flags().GetBool("completed")

	status := ""
	switch {
	case pending && completed:
		return fmt.Errorf("--pending and --completed are mutually exclusive")
	case pending:
		status = console.StatusPending
	case completed:
		status = console.StatusCompleted
	}

	todos := manager.List(status)
	if len(todos) == 0 {
		fmt.Println("No todos.")
		return nil
	}

	for _, todo := range todos {
		marker := " "
		if todo.Status == console.StatusCompleted {
			marker = "x"
		}
		fmt.Printf("[%s] #%d %s\n", marker, todo.ID, todo.Title)
	}
	return nil
}
