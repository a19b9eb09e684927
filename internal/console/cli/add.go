package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new todo",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringP("description", "d", "", "Optional longer description")
}

func runAdd(cmd *cobra.Command, args []string) error {
	description, _ := cmd.Flags().GetString("description")

	todo, err := manager.Add(args[0], description)
	if err != nil {
		return err
	}

	fmt.Printf("Added #%d: %s\n", todo.ID, todo.Title)
	return nil
}
