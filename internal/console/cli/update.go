package cli

import (
	"fmt"
	"strconv"

	"github.com/Nabeerak/hackathon-todo/internal/console"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Change a todo's title or description",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdate,
}

func init() {
	updateCmd.Flags().StringP("title", "t", "", "New title")
	updateCmd.Flags().StringP("description", "d", "", "New description")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}

	var input console.UpdateInput
	if cmd.Flags().Changed("title") {
		title, _ := cmd.Flags().GetString("title")
		input.Title = &title
	}
	if cmd.Flags().Changed("description") {
		description, _ := cmd.Flags().GetString("description")
		input.Description = &description
	}

	todo, err := manager.Update(id, input)
	if err != nil {
		return err
	}

	fmt.Printf("Updated #%d: %s\n", todo.ID, todo.Title)
	return nil
}
