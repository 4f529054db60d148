package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/adolfosalasgomez3011/luxpro-apps/internal/directory"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/ratings"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/repository/sqlstore"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/models"
)

func (a *app) contractorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contractors",
		Short: "Query the contractor directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var f models.ContractorFilter
	var onlyAvailable bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List contractors, best rated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, conn, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			if onlyAvailable {
				yes := true
				f.Available = &yes
			}
			dir := directory.New(sqlstore.New(conn, a.logger(cmd, cfg)), nil, a.logger(cmd, cfg))
			out, err := dir.List(ctx, f)
			if err != nil {
				return a.p.fail("Listing failed", err)
			}
			if len(out) == 0 {
				a.p.warning("no contractors match")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNOMBRE\tDISTRITO\tRATING\tDISPONIBLE\tSKILLS")
			for _, c := range out {
				avail := "no"
				if c.Disponible {
					avail = "sí"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\t%s\n", c.ID, c.Nombre, c.Distrito, c.RatingPromedio, avail, c.Skills)
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&f.Search, "search", "", "Match name or phone")
	list.Flags().StringVar(&f.Skill, "skill", "", "Match skill text")
	list.Flags().StringVar(&f.District, "distrito", "", "Exact district")
	list.Flags().BoolVar(&onlyAvailable, "disponible", false, "Only available contractors")

	cmd.AddCommand(list)
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show directory totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, conn, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			dir := directory.New(sqlstore.New(conn, a.logger(cmd, cfg)), nil, a.logger(cmd, cfg))
			st, err := dir.Stats(ctx)
			if err != nil {
				return a.p.fail("Stats failed", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total:        %d\n", st.Total)
			fmt.Fprintf(out, "Disponibles:  %d\n", st.Disponibles)
			fmt.Fprintf(out, "En proyecto:  %d\n", st.EnProyecto)
			fmt.Fprintf(out, "Rating prom.: %.1f\n", st.AvgRating)
			return nil
		},
	}
}

func (a *app) recomputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute <contractor-id>",
		Short: "Recompute a contractor's average from stored ratings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return a.p.fail("Invalid contractor id", fmt.Errorf("%q is not a positive integer", args[0]))
			}
			ctx := cmd.Context()
			cfg, conn, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			agg := ratings.NewAggregator(sqlstore.New(conn, a.logger(cmd, cfg)), nil, a.logger(cmd, cfg))
			avg, updated, err := agg.Recompute(ctx, id)
			if err != nil {
				return a.p.fail("Recompute failed", err)
			}
			if !updated {
				a.p.warning("contractor %d has no ratings; average stays %.2f", id, avg)
				return nil
			}
			a.p.success("contractor %d average is now %.2f", id, avg)
			return nil
		},
	}
}
