package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chainlens/chainlens/pkg/txgraph"
)

// addressCommand creates the "address" command for fetching details of
// a single address.
func (c *CLI) addressCommand() *cobra.Command {
	var (
		limit   int
		offset  int
		refresh bool
		asJSON  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "address <address>",
		Short: "Fetch transaction details for a bitcoin address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			client, cleanup, err := c.newClient(cmd.Context(), cfg, noCache)
			if err != nil {
				return err
			}
			defer cleanup()

			sp := newSpinnerWithContext(cmd.Context(), "Fetching "+args[0])
			sp.Start()
			details, err := client.FetchAddress(cmd.Context(), args[0], limit, offset, refresh)
			sp.Stop()
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(details)
			}

			printSuccess("Fetched %s", details.Address)
			printKeyValue("Balance", txgraph.FormatBTC(details.FinalBalance))
			printKeyValue("Received", txgraph.FormatBTC(details.TotalReceived))
			printKeyValue("Sent", txgraph.FormatBTC(details.TotalSent))
			printKeyValue("Txs", fmt.Sprintf("%d total, %d on this page", details.NTx, len(details.Txs)))
			printNextStep("Build the relationship graph", fmt.Sprintf("%s graph %s", appName, details.Address))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "transactions per page (1-100)")
	cmd.Flags().IntVar(&offset, "offset", 0, "transaction offset for paging")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the page cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON response")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the page cache entirely")

	return cmd
}
