package client

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moorlog/moor/internal/identity"
)

// NewKeyCommand constructs the `key` command group.
func NewKeyCommand() *cobra.Command {
	keyCmd := &cobra.Command{Use: "key", Short: "Submitter key management"}
	keyCmd.AddCommand(newKeyShowCommand(), newKeyRotateCommand())
	return keyCmd
}

// newKeyShowCommand constructs the `key show` subcommand.
func newKeyShowCommand() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the submitter identity for the local key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := loadKey()
			if err != nil {
				return err
			}
			reveal, _ := cmd.Flags().GetBool("reveal")
			submitter := identity.DeriveSubmitter([]byte(key))
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "submitter:", submitter.Hex())
			if reveal {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "key:", key)
			}
			return nil
		},
	}
	showCmd.Flags().Bool("reveal", false, "Print the key material itself")
	return showCmd
}

// newKeyRotateCommand constructs the `key rotate` subcommand.
func newKeyRotateCommand() *cobra.Command {
	rotateCmd := &cobra.Command{
		Use:   "rotate",
		Short: "Generate a new submitter key (new identity)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := rotateKey()
			if err != nil {
				return err
			}
			submitter := identity.DeriveSubmitter([]byte(key))
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "submitter:", submitter.Hex())
			return nil
		},
	}
	return rotateCmd
}
