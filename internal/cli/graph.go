package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chainlens/chainlens/pkg/blockchain"
	"github.com/chainlens/chainlens/pkg/errors"
	"github.com/chainlens/chainlens/pkg/txgraph"
)

// Output formats for the graph command.
const (
	formatJSON = "json"
	formatDOT  = "dot"
)

// graphCommand creates the "graph" command for building address
// relationship graphs.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		limit   int
		offset  int
		refresh bool
		noCache bool
		format  string
		output  string
		expand  []string
	)

	cmd := &cobra.Command{
		Use:   "graph <address>",
		Short: "Build the relationship graph around a bitcoin address",
		Long:  `Build the relationship graph around a bitcoin address from its transaction page. Each --expand fetches a further address and merges its graph into the result; with the default pacing every expansion costs several seconds of rate budget.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatJSON && format != formatDOT {
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want %s or %s)", format, formatJSON, formatDOT)
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			client, cleanup, err := c.newClient(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer cleanup()

			prog := newProgress(c.Logger)
			g, err := buildGraph(ctx, client, args[0], limit, offset, refresh, expand)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Built graph with %d nodes and %d links", len(g.Nodes), len(g.Links)))

			data, err := encodeGraph(g, format)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			printSuccess("Graph written")
			printFile(output)
			printStats(len(g.Nodes), len(g.Links), false)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "transactions per page (1-100)")
	cmd.Flags().IntVar(&offset, "offset", 0, "transaction offset for paging")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the page cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the page cache entirely")
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json or dot")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().StringArrayVar(&expand, "expand", nil, "additional address to fetch and merge (repeatable)")

	return cmd
}

// buildGraph fetches the root page and every expansion, merging all
// partial graphs. Each fetch goes through the shared rate governor.
func buildGraph(ctx context.Context, client *blockchain.Client, root string, limit, offset int, refresh bool, expand []string) (*txgraph.Graph, error) {
	logger := loggerFromContext(ctx)

	sp := newSpinnerWithContext(ctx, "Fetching "+root)
	sp.Start()
	details, err := client.FetchAddress(ctx, root, limit, offset, refresh)
	sp.Stop()
	if err != nil {
		return nil, err
	}
	g, err := txgraph.Build(details)
	if err != nil {
		return nil, err
	}

	for _, addr := range expand {
		sp := newSpinnerWithContext(ctx, "Expanding "+addr)
		sp.Start()
		details, err := client.FetchAddress(ctx, addr, limit, 0, refresh)
		sp.Stop()
		if err != nil {
			return nil, err
		}
		part, err := txgraph.Build(details)
		if err != nil {
			return nil, err
		}
		g = txgraph.Merge(g, part)
		logger.Debug("merged expansion", "address", addr, "nodes", len(g.Nodes), "links", len(g.Links))
	}
	return g, nil
}

func encodeGraph(g *txgraph.Graph, format string) ([]byte, error) {
	if format == formatDOT {
		return []byte(txgraph.ToDOT(g)), nil
	}
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
