package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/dopamenu/internal/intervention/history"
	"github.com/runger/dopamenu/internal/intervention/model"
	"github.com/runger/dopamenu/internal/picker"
)

var (
	portfolioFormat string
	portfolioDays   int
)

var portfolioCmd = &cobra.Command{
	Use:     "portfolio",
	Short:   "Reflect on today: what kinds of things did you do?",
	GroupID: groupCore,
	Long: `Show today's portfolio: a handful of categories to tick off, a 1-5
good-day rating and free-form notes. Days follow profile.timezone.

Examples:
  dopamenu portfolio                     # Today at a glance
  dopamenu portfolio toggle physical     # Tick (or untick) a category
  dopamenu portfolio rate 4
  dopamenu portfolio note "walked to the lake, no phone"
  dopamenu portfolio recent --days 14
  dopamenu portfolio stats`,
	Args: cobra.NoArgs,
	RunE: runPortfolioShow,
}

var portfolioToggleCmd = &cobra.Command{
	Use:   "toggle <category>...",
	Short: "Tick or untick categories for today",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPortfolioToggle,
}

var portfolioRateCmd = &cobra.Command{
	Use:   "rate <1-5>",
	Short: "Rate how good today was",
	Args:  cobra.ExactArgs(1),
	RunE:  runPortfolioRate,
}

var portfolioNoteCmd = &cobra.Command{
	Use:   "note <text>",
	Short: "Replace today's notes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPortfolioNote,
}

var portfolioRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show the portfolios of the last few days",
	Args:  cobra.NoArgs,
	RunE:  runPortfolioRecent,
}

var portfolioStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize every stored portfolio",
	Args:  cobra.NoArgs,
	RunE:  runPortfolioStats,
}

var portfolioResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every stored portfolio",
	Args:  cobra.NoArgs,
	RunE:  runPortfolioReset,
}

func init() {
	portfolioCmd.PersistentFlags().StringVar(&portfolioFormat, "format", "text", "output format: text or json")
	portfolioRecentCmd.Flags().IntVarP(&portfolioDays, "days", "d", 7, "how many days to look back, today included")

	portfolioCmd.AddCommand(portfolioToggleCmd, portfolioRateCmd, portfolioNoteCmd,
		portfolioRecentCmd, portfolioStatsCmd, portfolioResetCmd)
	rootCmd.AddCommand(portfolioCmd)
}

// withPortfolioStore validates --format, opens the store and runs fn.
func withPortfolioStore(fn func(a *app, store *history.Store) error) error {
	if portfolioFormat != "text" && portfolioFormat != "json" {
		return fmt.Errorf("unknown format %q (must be text or json)", portfolioFormat)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.openStore()
	if err != nil {
		return err
	}
	return fn(a, store)
}

func runPortfolioShow(cmd *cobra.Command, args []string) error {
	return withPortfolioStore(func(a *app, store *history.Store) error {
		p, err := store.Portfolio(commandContext(cmd), a.today())
		if err != nil {
			return err
		}
		return writePortfolio(cmd.OutOrStdout(), p)
	})
}

func runPortfolioToggle(cmd *cobra.Command, args []string) error {
	return withPortfolioStore(func(a *app, store *history.Store) error {
		var p model.DailyPortfolio
		for _, arg := range args {
			var err error
			p, err = store.ToggleCategory(commandContext(cmd), a.today(), strings.ToLower(arg))
			if err != nil {
				return fmt.Errorf("%w (choose from: %s)", err, categoryChoices())
			}
		}
		a.logger.Info("portfolio categories toggled", "day", p.Date, "categories", args)
		return writePortfolio(cmd.OutOrStdout(), p)
	})
}

func runPortfolioRate(cmd *cobra.Command, args []string) error {
	rating, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("rating must be a number from %d to %d", model.MinRating, model.MaxRating)
	}
	return withPortfolioStore(func(a *app, store *history.Store) error {
		p, err := store.SetGoodDayRating(commandContext(cmd), a.today(), rating)
		if err != nil {
			return err
		}
		a.logger.Info("portfolio rated", "day", p.Date, "rating", rating)
		return writePortfolio(cmd.OutOrStdout(), p)
	})
}

func runPortfolioNote(cmd *cobra.Command, args []string) error {
	return withPortfolioStore(func(a *app, store *history.Store) error {
		p, err := store.SetNotes(commandContext(cmd), a.today(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return writePortfolio(cmd.OutOrStdout(), p)
	})
}

func runPortfolioRecent(cmd *cobra.Command, args []string) error {
	return withPortfolioStore(func(a *app, store *history.Store) error {
		ps, err := store.RecentPortfolios(commandContext(cmd), a.today(), portfolioDays)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if portfolioFormat == "json" {
			return writeJSON(out, ps)
		}
		if len(ps) == 0 {
			fmt.Fprintf(out, "No portfolios in the last %d day(s).\n", portfolioDays)
			return nil
		}
		for _, p := range ps {
			fmt.Fprintf(out, "%s  %d/%d  %s\n",
				styleCyan.Render(p.Date),
				p.CompletedCount(), len(p.Categories),
				ratingStars(p.GoodDayRating))
		}
		return nil
	})
}

func runPortfolioStats(cmd *cobra.Command, args []string) error {
	return withPortfolioStore(func(a *app, store *history.Store) error {
		st, err := store.PortfolioStats(commandContext(cmd))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if portfolioFormat == "json" {
			return writeJSON(out, st)
		}
		if st.TotalDays == 0 {
			fmt.Fprintln(out, "No portfolios recorded yet.")
			return nil
		}
		fmt.Fprintln(out, styleBold.Render("Portfolios"))
		fmt.Fprintf(out, "  %-22s %d\n", "days", st.TotalDays)
		fmt.Fprintf(out, "  %-22s %d\n", "categories completed", st.CompletedCategories)
		if st.RatedDays > 0 {
			fmt.Fprintf(out, "  %-22s %.1f (%d rated)\n", "average rating", st.AverageRating, st.RatedDays)
		} else {
			fmt.Fprintf(out, "  %-22s %s\n", "average rating", styleDim.Render("(no ratings)"))
		}
		return nil
	})
}

func runPortfolioReset(cmd *cobra.Command, args []string) error {
	return withPortfolioStore(func(a *app, store *history.Store) error {
		if err := store.ResetPortfolios(commandContext(cmd)); err != nil {
			return fmt.Errorf("failed to reset portfolios: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Portfolios cleared.")
		return nil
	})
}

func writePortfolio(out io.Writer, p model.DailyPortfolio) error {
	if portfolioFormat == "json" {
		return writeJSON(out, p)
	}

	fmt.Fprintf(out, "%s  %s\n", styleBold.Render(p.Date), ratingStars(p.GoodDayRating))
	for _, c := range p.Categories {
		box := "[ ]"
		if c.Completed {
			box = styleGreen.Render("[x]")
		}
		fmt.Fprintf(out, "  %s %s\n", box, picker.Clean(c.Label))
	}
	if p.Notes != "" {
		fmt.Fprintf(out, "  %s %s\n", styleDim.Render("notes:"), picker.MiddleTruncate(picker.Clean(p.Notes), max(termWidth()-10, 20)))
	}
	fmt.Fprintln(out, styleDim.Render(fmt.Sprintf("%d of %d done", p.CompletedCount(), len(p.Categories))))
	return nil
}

func ratingStars(r *int) string {
	if r == nil {
		return styleDim.Render("not rated")
	}
	return styleYellow.Render(strings.Repeat("★", *r) + strings.Repeat("☆", model.MaxRating-*r))
}

func categoryChoices() string {
	ids := make([]string, 0, len(model.DefaultPortfolioCategories))
	for _, c := range model.DefaultPortfolioCategories {
		ids = append(ids, c.ID)
	}
	return strings.Join(ids, ", ")
}
