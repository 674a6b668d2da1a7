package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the moor client.
// It registers the anchor and key command groups.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "moor",
		Short: "Moor client commands",
	}
	root.AddCommand(NewAnchorCommand(baseURL))
	root.AddCommand(NewKeyCommand())
	return root
}
