package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/adorep/internal/core"
)

var childPatchCmd = &cobra.Command{
	Use:   "child-patch",
	Short: "Build the JSON PATCH that creates a linked child feature",
	Long: `Read a parent work item (REST API JSON with id and fields) from stdin and
write the JSON PATCH document that creates a child feature in the child area,
linked to the parent, to stdout. Nothing is sent to Azure DevOps.

Example:
  az boards work-item show --id 4711 -o json | adorep child-patch`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var parent core.ParentPayload
		if err := json.NewDecoder(cmd.InOrStdin()).Decode(&parent); err != nil {
			return fmt.Errorf("reading parent work item from stdin: %w", err)
		}
		if parent.ID <= 0 {
			return fmt.Errorf("parent work item has no id")
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(core.BuildChildPatch(parent, rt.Config))
	},
}

func init() {
	rootCmd.AddCommand(childPatchCmd)
}
