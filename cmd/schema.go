package cmd

import (
	"fmt"

	"github.com/grovepm/grove-ledger/pkg/ledger"
	"github.com/spf13/cobra"
)

func NewSchemaCmd() *cobra.Command {
	var forLedger bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for manifest or ledger files",
		Long: `Print a JSON Schema describing the manifest file format (or, with
--ledger, the ledger file format), for editor validation of hand-authored
files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if forLedger {
				data, err = ledger.LedgerSchema()
			} else {
				data, err = ledger.ManifestSchema()
			}
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&forLedger, "ledger", false, "Print the ledger schema instead of the manifest schema")
	return cmd
}
