package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkordes/eldplan/internal/config"
	"github.com/pkordes/eldplan/internal/geocode"
	"github.com/pkordes/eldplan/internal/repo"
	"github.com/pkordes/eldplan/internal/service"
	"github.com/pkordes/eldplan/internal/tui"
)

// DefaultTripFile is where the terminal planner keeps its trip slot.
const DefaultTripFile = "eldplan-trip.json"

var (
	planFile    string
	planLogFile string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a trip in the terminal",
	Long: `plan opens a full-screen planner with the same inputs as the web page.
A submitted trip is written to --file and its log sheets are shown right away;
"eldplan logs" prints them again later.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// The terminal belongs to the UI, so logs go to a file or nowhere.
		var w io.Writer = io.Discard
		if planLogFile != "" {
			f, err := os.OpenFile(planLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("commands.plan: open log file: %w", err)
			}
			defer f.Close()
			w = f
		}
		logger := newLogger(w, cfg.LogLevel)
		slog.SetDefault(logger)

		geo, err := newGeocoder(cfg)
		if err != nil {
			return err
		}

		feed := tui.NewSuggestionFeed()
		p, err := service.NewPlanner(repo.LocalSession, service.PlannerConfig{
			Geocoder: geo,
			Slots:    repo.NewFileTripSlotRepo(planFile),
			Input: geocode.Options{
				Filters:  geocode.DefaultFilters(),
				Debounce: cfg.Debounce,
				Timeout:  cfg.GeocodeTimeout,
			},
			SubmitDelay:   cfg.SubmitDelay,
			RedirectDelay: cfg.RedirectDelay,
			OnSuggestions: feed.Publish,
			Logger:        logger,
		})
		if err != nil {
			return err
		}
		defer p.Close()

		return tui.RunPlanner(cmd.Context(), p, feed)
	},
}

func init() {
	planCmd.Flags().StringVar(&planFile, "file", DefaultTripFile, "trip slot file written on submit")
	planCmd.Flags().StringVar(&planLogFile, "log-file", "", "append JSON logs to this file")
}
