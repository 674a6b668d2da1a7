package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// NewAnchorCommand constructs the `anchor` command group and subcommands.
func NewAnchorCommand(baseURL BaseURLFunc) *cobra.Command {
	anchorCmd := &cobra.Command{Use: "anchor", Short: "Anchoring operations"}

	anchorCmd.AddCommand(
		newAnchorSubmitCommand(baseURL),
		newAnchorBatchCommand(baseURL),
		newAnchorListCommand(baseURL),
		newAnchorGetCommand(baseURL),
		newAnchorTailCommand(baseURL),
		newAnchorStatsCommand(baseURL),
		newAnchorLimitsCommand(baseURL),
	)

	return anchorCmd
}

// newAnchorSubmitCommand constructs the `anchor submit` subcommand.
func newAnchorSubmitCommand(baseURL BaseURLFunc) *cobra.Command {
	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit one batch id hash and Merkle root for anchoring",
		RunE: func(cmd *cobra.Command, _ []string) error {
			batchIDHash, _ := cmd.Flags().GetString("batch-id-hash")
			merkleRoot, _ := cmd.Flags().GetString("merkle-root")
			chainTag, _ := cmd.Flags().GetString("chain-tag")
			note, _ := cmd.Flags().GetString("note")

			key, err := loadKey()
			if err != nil {
				return err
			}
			var rcpt map[string]any
			err = postJSON(baseURL()+"/v1/anchors", key, map[string]string{
				"batch_id_hash": batchIDHash,
				"merkle_root":   merkleRoot,
				"chain_tag":     chainTag,
				"note":          note,
			}, &rcpt)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rcpt)
		},
	}
	submitCmd.Flags().String("batch-id-hash", "", "32-byte batch id hash (hex)")
	submitCmd.Flags().String("merkle-root", "", "32-byte Merkle root (hex)")
	submitCmd.Flags().String("chain-tag", "", "Target chain tag")
	submitCmd.Flags().String("note", "", "Optional note")
	return submitCmd
}

// newAnchorBatchCommand constructs the `anchor batch` subcommand.
func newAnchorBatchCommand(baseURL BaseURLFunc) *cobra.Command {
	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Submit a batch of hash pairs atomically",
		RunE: func(cmd *cobra.Command, _ []string) error {
			hashes, _ := cmd.Flags().GetStringArray("batch-id-hash")
			roots, _ := cmd.Flags().GetStringArray("merkle-root")
			chainTag, _ := cmd.Flags().GetString("chain-tag")
			note, _ := cmd.Flags().GetString("note")

			key, err := loadKey()
			if err != nil {
				return err
			}
			var rcpt map[string]any
			err = postJSON(baseURL()+"/v1/anchors/batch", key, map[string]any{
				"batch_id_hashes": hashes,
				"merkle_roots":    roots,
				"chain_tag":       chainTag,
				"note":            note,
			}, &rcpt)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rcpt)
		},
	}
	batchCmd.Flags().StringArray("batch-id-hash", []string{}, "32-byte batch id hash (hex, repeat)")
	batchCmd.Flags().StringArray("merkle-root", []string{}, "32-byte Merkle root (hex, repeat)")
	batchCmd.Flags().String("chain-tag", "", "Target chain tag shared by the batch")
	batchCmd.Flags().String("note", "", "Optional note shared by the batch")
	return batchCmd
}

// newAnchorListCommand constructs the `anchor list` subcommand.
func newAnchorListCommand(baseURL BaseURLFunc) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accepted records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			startToken, _ := cmd.Flags().GetString("start-token")
			limit, _ := cmd.Flags().GetInt("limit")
			reverse, _ := cmd.Flags().GetBool("reverse")

			q := url.Values{}
			if startToken != "" {
				q.Set("start_token", startToken)
			}
			if limit > 0 {
				q.Set("limit", fmt.Sprint(limit))
			}
			if reverse {
				q.Set("reverse", "true")
			}
			var out map[string]any
			if err := getJSON(baseURL()+"/v1/anchors?"+q.Encode(), &out); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	listCmd.Flags().String("start-token", "", "Resume token from a previous page")
	listCmd.Flags().Int("limit", 100, "Max records to return")
	listCmd.Flags().Bool("reverse", false, "Read newest-to-oldest")
	return listCmd
}

// newAnchorGetCommand constructs the `anchor get` subcommand.
func newAnchorGetCommand(baseURL BaseURLFunc) *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get <seq>",
		Short: "Get one accepted record by sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out map[string]any
			if err := getJSON(baseURL()+"/v1/anchors/"+args[0], &out); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	return getCmd
}

// newAnchorTailCommand constructs the `anchor tail` subcommand.
func newAnchorTailCommand(baseURL BaseURLFunc) *cobra.Command {
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Stream accepted records without a durable cursor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, _ := cmd.Flags().GetString("from")
			startToken, _ := cmd.Flags().GetString("start-token")
			limit, _ := cmd.Flags().GetInt("limit")
			filter, _ := cmd.Flags().GetString("filter")

			q := url.Values{}
			if from == "earliest" {
				q.Set("from", "earliest")
			}
			if startToken != "" {
				q.Set("start_token", startToken)
			}
			if limit > 0 {
				q.Set("limit", fmt.Sprint(limit))
			}
			if filter != "" {
				q.Set("filter", filter)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			return streamSSE(baseURL()+"/v1/anchors/tail?"+q.Encode(), func(data []byte) error {
				var ev map[string]any
				if err := json.Unmarshal(data, &ev); err != nil {
					return err
				}
				return enc.Encode(ev)
			})
		},
	}
	tailCmd.Flags().String("from", "latest", "Start position: latest|earliest")
	tailCmd.Flags().String("start-token", "", "Resume token")
	tailCmd.Flags().Int("limit", 0, "Stop after N records (0 = infinite)")
	tailCmd.Flags().String("filter", "", "CEL filter (server-side)")
	return tailCmd
}

// newAnchorStatsCommand constructs the `anchor stats` subcommand.
func newAnchorStatsCommand(baseURL BaseURLFunc) *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Get record stream statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out map[string]any
			if err := getJSON(baseURL()+"/v1/anchors/stats", &out); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	return statsCmd
}

// newAnchorLimitsCommand constructs the `anchor limits` subcommand.
func newAnchorLimitsCommand(baseURL BaseURLFunc) *cobra.Command {
	limitsCmd := &cobra.Command{
		Use:   "limits",
		Short: "Show the server's structural limits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out map[string]any
			if err := getJSON(baseURL()+"/v1/limits", &out); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	return limitsCmd
}
