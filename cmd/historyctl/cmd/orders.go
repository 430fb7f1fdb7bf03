package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"backoffice/internal/history/matcher"
	"backoffice/internal/history/models"
)

func newOrdersCmd(v *viper.Viper) *cobra.Command {
	var kind, id string

	cmd := &cobra.Command{
		Use:   "orders [query]",
		Short: "Print the order history of one candidate",
		Long: `Run the search, pick the candidate given by --kind and --id, and print its
orders. When the search yields exactly one candidate the flags may be omitted.

Examples:
  historyctl orders 20123456
  historyctl orders dupont --kind guest --id 65f1c0... --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrders(cmd.Context(), cmd.OutOrStdout(), v, args[0], kind, id)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "candidate kind (registered or guest)")
	cmd.Flags().StringVar(&id, "id", "", "candidate id (client id, or source order id for guests)")
	return cmd
}

func runOrders(ctx context.Context, out io.Writer, v *viper.Viper, query, kind, id string) error {
	client, err := backendFrom(v)
	if err != nil {
		return err
	}
	clients, orders, err := fetchBoth(ctx, client)
	if err != nil {
		return err
	}

	candidates := matcher.FindCandidates(query, clients, orders)
	candidate, err := pick(candidates, kind, id)
	if err != nil {
		return err
	}
	history := models.NewHistory(candidate, matcher.ResolveOrders(candidate, orders, query))

	if v.GetBool("json") {
		return writeJSON(out, history)
	}

	fmt.Fprintf(out, "%s [%s] %s: %d order(s)\n\n", displayName(candidate.Name), candidate.Identity.Kind, candidate.Identity.ID, len(history.Orders))
	for _, o := range history.Orders {
		date := "-"
		if o.Date != nil {
			date = o.Date.Format("2006-01-02")
		}
		fmt.Fprintf(out, "%-12s %-10s %10.3f  %s\n", o.Number, date, o.Total, o.Status)
	}
	return nil
}

func pick(candidates []models.Candidate, kind, id string) (models.Candidate, error) {
	if kind == "" && id == "" {
		if len(candidates) == 1 {
			return candidates[0], nil
		}
		return models.Candidate{}, fmt.Errorf("%d candidates match; choose one with --kind and --id", len(candidates))
	}
	k, err := models.ParseKind(kind)
	if err != nil {
		return models.Candidate{}, err
	}
	want := models.Identity{Kind: k, ID: id}
	for _, c := range candidates {
		if c.Identity == want {
			return c, nil
		}
	}
	return models.Candidate{}, fmt.Errorf("no %s candidate %q for this query", k, id)
}
