package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"cinema-booking-cli/app"
	"cinema-booking-cli/catalog"
	"cinema-booking-cli/model"
	"cinema-booking-cli/service"
	"cinema-booking-cli/store"
)

func newMoviesCommand(opts *rootOptions) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "movies",
		Short: "List movies",
		Long:  `List every movie, or those whose title, description or year contain --search.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := refreshCatalog(cmd, ctx, a, true, false); err != nil {
					return err
				}
				renderMovies(cmd, a.Catalog.SearchMovies(search))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by title, description or year")
	return cmd
}

func newScreeningsCommand(opts *rootOptions) *cobra.Command {
	var (
		movieID int
		date    string
	)
	cmd := &cobra.Command{
		Use:   "screenings",
		Short: "List screenings",
		Long:  `List screenings ordered by time, optionally for one movie or one day.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := refreshCatalog(cmd, ctx, a, false, true); err != nil {
					return err
				}
				if date != "" {
					day, err := time.ParseInLocation(time.DateOnly, date, time.Local)
					if err != nil {
						return fmt.Errorf("invalid --date %q: use yyyy-mm-dd", date)
					}
					screenings, err := a.Catalog.FilterByDate(ctx, day)
					if err != nil {
						return errors.New(service.Message(err))
					}
					_ = store.RememberDate(day)
					renderScreenings(cmd, screenings)
					return nil
				}
				renderScreenings(cmd, a.Catalog.FilterByMovie(movieID))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&movieID, "movie", model.AllMovies, "only screenings of this movie id")
	cmd.Flags().StringVar(&date, "date", "", "only screenings on this day (yyyy-mm-dd)")
	cmd.MarkFlagsMutuallyExclusive("movie", "date")
	return cmd
}

func newTopCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "top",
		Short: "Show the most booked movies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				top, err := a.Catalog.TopMovies(ctx)
				if err != nil {
					return errors.New(service.Message(err))
				}
				t := newTable(cmd)
				t.AppendHeader(table.Row{"#", "Movie", "Bookings"})
				for i, movie := range top {
					t.AppendRow(table.Row{i + 1, movie.Title, movie.TotalBookings})
				}
				t.Render()
				return nil
			})
		},
	}
}

func newStatsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <screening-id>",
		Short: "Show seat occupancy of a screening",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid screening id %q", args[0])
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				stats, err := a.Catalog.ScreeningStats(ctx, id)
				if err != nil {
					return errors.New(service.Message(err))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Booked seats: %d / %d (%.1f%%)\n", stats.BookingCount, stats.TotalSeats, stats.Percentage)
				return nil
			})
		},
	}
}

// refreshCatalog reloads the catalog. A failed half only aborts the command
// when that half is needed; otherwise it is reported on stderr.
func refreshCatalog(cmd *cobra.Command, ctx context.Context, a *app.App, needMovies bool, needScreenings bool) error {
	err := a.Catalog.Refresh(ctx)
	var refreshErr *catalog.RefreshError
	if !errors.As(err, &refreshErr) {
		return err
	}
	if refreshErr.Movies != nil {
		if needMovies {
			return fmt.Errorf("could not load movies: %s", service.Message(refreshErr.Movies))
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not load movies: %s\n", service.Message(refreshErr.Movies))
	}
	if refreshErr.Screenings != nil {
		if needScreenings {
			return fmt.Errorf("could not load screenings: %s", service.Message(refreshErr.Screenings))
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not load screenings: %s\n", service.Message(refreshErr.Screenings))
	}
	return nil
}

func newTable(cmd *cobra.Command) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	return t
}

func renderMovies(cmd *cobra.Command, movies []model.Movie) {
	t := newTable(cmd)
	t.AppendHeader(table.Row{"ID", "Title", "Year", "Description", "Added by"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 30},
		{Number: 4, WidthMax: 50},
	})
	for _, movie := range movies {
		t.AppendRow(table.Row{movie.Id, movie.Title, movie.Year, oneLine(movie.Description), movie.AdminName})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d movies", len(movies))})
	t.Render()
}

func renderScreenings(cmd *cobra.Command, screenings []model.Screening) {
	rowConfigAutoMerge := table.RowConfig{AutoMerge: true}
	t := newTable(cmd)
	t.AppendHeader(table.Row{"Movie", "ID", "Room", "Time"}, rowConfigAutoMerge)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true, WidthMax: 30},
	})
	for _, screening := range screenings {
		t.AppendRow(table.Row{
			screening.MovieTitle,
			screening.Id,
			screening.Room,
			screening.Time.Local().Format("2006-01-02 15:04"),
		}, rowConfigAutoMerge)
	}
	t.Render()
}

func oneLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
