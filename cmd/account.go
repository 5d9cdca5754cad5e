package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"cinema-booking-cli/app"
	"cinema-booking-cli/model"
	"cinema-booking-cli/service"
	"cinema-booking-cli/store"
	"cinema-booking-cli/workflow"
)

func newRegisterCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				username, err := promptText("Username", "")
				if err != nil {
					return err
				}
				email, err := promptText("E-mail", "")
				if err != nil {
					return err
				}
				password, err := promptSecret("Password")
				if err != nil {
					return err
				}
				confirm, err := promptSecret("Confirm password")
				if err != nil {
					return err
				}
				if password != confirm {
					return errors.New("passwords do not match")
				}
				if err := a.Register(ctx, username, email, password); err != nil {
					return errors.New(service.Message(err))
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Account created. You can log in now.")
				return nil
			})
		},
	}
}

func newBookingsCommand(opts *rootOptions) *cobra.Command {
	var deleteID int
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Log in and list your bookings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := promptLogin(ctx, a); err != nil {
					return err
				}
				profile, err := a.OpenProfile()
				if err != nil {
					return errors.New(service.Message(err))
				}
				defer profile.Close()

				view, err := profile.Load(ctx)
				if err != nil {
					return errors.New(service.Message(err))
				}
				if deleteID > 0 {
					view, err = profile.DeleteBooking(ctx, deleteID, confirmDelete)
					if errors.Is(err, workflow.ErrNotConfirmed) {
						fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted.")
						return nil
					}
					if err != nil {
						return errors.New(service.Message(err))
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Booking %d deleted.\n", deleteID)
				}
				renderProfile(cmd, view)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&deleteID, "delete", 0, "delete this booking id after confirmation")
	return cmd
}

func newBookCommand(opts *rootOptions) *cobra.Command {
	var seat string
	cmd := &cobra.Command{
		Use:   "book <screening-id>",
		Short: "Log in and book a seat for a screening",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			screeningID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid screening id %q", args[0])
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := promptLogin(ctx, a); err != nil {
					return err
				}
				flow, err := a.Booking.Open(ctx, screeningID)
				if err != nil {
					return errors.New(service.Message(err))
				}
				defer flow.Close()

				detail := flow.Screening()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s\n%s, room %s\n", flow.MovieTitle(), detail.Time.Local().Format("2006-01-02 15:04"), detail.Room)
				if detail.Movie != nil && detail.Movie.Description != "" {
					fmt.Fprintln(out, detail.Movie.Description)
				}

				for {
					if strings.TrimSpace(seat) == "" {
						seat, err = promptText("Seat", "")
						if err != nil {
							return err
						}
					}
					err = flow.Confirm(ctx, seat)
					if err == nil {
						fmt.Fprintf(out, "Seat %s booked.\n", flow.Seat())
						return nil
					}
					fmt.Fprintln(cmd.ErrOrStderr(), service.Message(err))
					var apiErr *service.APIError
					if !errors.As(err, &apiErr) && !service.IsValidation(err) {
						return errors.New(service.Message(err))
					}
					seat = ""
				}
			})
		},
	}
	cmd.Flags().StringVar(&seat, "seat", "", "seat to book, e.g. C12")
	return cmd
}

func promptLogin(ctx context.Context, a *app.App) error {
	email, err := promptText("E-mail", store.LastAccountEmail())
	if err != nil {
		return err
	}
	password, err := promptSecret("Password")
	if err != nil {
		return err
	}
	if _, err := a.Login(ctx, email, password); err != nil {
		return errors.New(service.Message(err))
	}
	return nil
}

func promptText(label string, defaultValue string) (string, error) {
	prompt := promptui.Prompt{
		Label:   label,
		Default: defaultValue,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("required")
			}
			return nil
		},
	}
	value, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(value), nil
}

func promptSecret(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Mask:  '*',
	}
	value, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.ToLower(label), err)
	}
	return value, nil
}

func confirmDelete(booking model.Booking) bool {
	label := fmt.Sprintf("Delete booking %d", booking.Id)
	if booking.Seat != "" {
		label += " (seat " + booking.Seat + ")"
	}
	prompt := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := prompt.Run()
	return err == nil
}

func renderProfile(cmd *cobra.Command, view workflow.ProfileView) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "User: %s (%s)\n", view.User.Username, view.User.EmailAddress)
	if view.StatsErr != nil {
		fmt.Fprintf(out, "Could not load statistics: %s\n", service.Message(view.StatsErr))
	} else {
		fmt.Fprintf(out, "Total bookings: %d\n", view.Stats.TotalBookings)
	}
	if view.BookingsErr != nil {
		fmt.Fprintf(out, "Could not load bookings: %s\n", service.Message(view.BookingsErr))
		return
	}
	t := newTable(cmd)
	t.AppendHeader(table.Row{"ID", "Movie", "Time", "Seat"})
	for _, booking := range view.Bookings {
		t.AppendRow(table.Row{booking.Id, bookingMovieTitle(booking), bookingTime(booking), booking.Seat})
	}
	t.Render()
}

func bookingMovieTitle(booking model.Booking) string {
	if booking.Screening != nil && booking.Screening.Movie != nil && booking.Screening.Movie.Title != "" {
		return booking.Screening.Movie.Title
	}
	return model.UnknownMovieTitle
}

func bookingTime(booking model.Booking) string {
	if booking.Screening == nil || booking.Screening.Time.IsZero() {
		return ""
	}
	return booking.Screening.Time.Local().Format("2006-01-02 15:04")
}
