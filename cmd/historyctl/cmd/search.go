package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"backoffice/internal/history/adapters/backend"
	"backoffice/internal/history/matcher"
	"backoffice/internal/history/models"
)

func newSearchCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "List the candidates matching a name, phone or email",
		Long: `Fetch clients and orders from the backend and print the deduplicated
candidates for the query, with the number of orders each one resolves to.

Examples:
  historyctl search 20123456
  historyctl search "jean dupont" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd.OutOrStdout(), v, args[0])
		},
	}
}

type candidateRow struct {
	models.Candidate
	OrderCount int `json:"order_count"`
}

func runSearch(ctx context.Context, out io.Writer, v *viper.Viper, query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query must not be empty")
	}
	client, err := backendFrom(v)
	if err != nil {
		return err
	}

	clients, orders, err := fetchBoth(ctx, client)
	if err != nil {
		return err
	}

	candidates := matcher.FindCandidates(query, clients, orders)
	rows := make([]candidateRow, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, candidateRow{Candidate: c, OrderCount: len(matcher.ResolveOrders(c, orders, query))})
	}

	if v.GetBool("json") {
		return writeJSON(out, struct {
			Query      string         `json:"query"`
			Count      int            `json:"count"`
			Candidates []candidateRow `json:"candidates"`
		}{Query: query, Count: len(rows), Candidates: rows})
	}

	if len(rows) == 0 {
		fmt.Fprintf(out, "No candidates for %q\n", query)
		return nil
	}
	fmt.Fprintf(out, "Candidates for %q (%d)\n\n", query, len(rows))
	for i, r := range rows {
		fmt.Fprintf(out, "%d. [%s] %s  id=%s  orders=%d\n", i+1, r.Identity.Kind, displayName(r.Name), r.Identity.ID, r.OrderCount)
		if contact := contactLine(r.Candidate); contact != "" {
			fmt.Fprintf(out, "   %s\n", contact)
		}
	}
	return nil
}

// fetchBoth needs both collections; unlike the server, the CLI fails fast.
func fetchBoth(ctx context.Context, client *backend.Client) ([]models.Client, []models.Order, error) {
	var clients []models.Client
	var orders []models.Order

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		clients, err = client.ListClients(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = client.ListOrders(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return clients, orders, nil
}

func displayName(name string) string {
	if name == "" {
		return "(no name)"
	}
	return name
}

func contactLine(c models.Candidate) string {
	var parts []string
	if len(c.Phones) > 0 {
		parts = append(parts, "tel: "+strings.Join(c.Phones, ", "))
	}
	if c.Email != "" {
		parts = append(parts, "email: "+c.Email)
	}
	if c.City != "" {
		parts = append(parts, c.City)
	}
	return strings.Join(parts, " | ")
}
