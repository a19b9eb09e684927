package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a todo's details",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}

	todo, err := manager.Get(id)
	if err != nil {
		return err
	}

	fmt.Printf("#%d %s\n", todo.ID, todo.Title)
	fmt.Printf("Status:  %s\n", todo.Status)
	fmt.Printf("Created: %s\n", todo.CreatedAt.Format("2006-01-02 15:04"))
	if todo.Description != "" {
		fmt.Printf("Notes:   %s\n", todo.Description)
	}
	return nil
}
