package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/pkordes/eldplan/internal/config"
	"github.com/pkordes/eldplan/internal/domain"
	"github.com/pkordes/eldplan/internal/eldlog"
	"github.com/pkordes/eldplan/internal/repo"
	"github.com/pkordes/eldplan/internal/service"
	"github.com/pkordes/eldplan/internal/tui"
)

var (
	logsFile    string
	logsSession string
	logsDay     int
	logsDebug   bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the ELD log sheets of a planned trip",
	Long: `logs reads the trip written by "eldplan plan" (or, with --session, the trip
a web session submitted to the configured store) and prints its log sheets.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		trip, err := loadTrip(cmd.Context())
		if errors.Is(err, domain.ErrNotFound) {
			return errors.New("no trip data found, plan a trip first")
		}
		if err != nil {
			return err
		}

		days := eldlog.Generate(trip)
		out := cmd.OutOrStdout()
		if logsDebug {
			_, _ = pretty.Fprintf(out, "%# v\n", trip)
			_, _ = pretty.Fprintf(out, "%# v\n", days)
			return nil
		}
		if logsDay > 0 {
			p := service.NewPager(logsDay-1, len(days))
			fmt.Fprintln(out, tui.RenderDay(days[p.Index], p.Index+1, p.Total))
			return nil
		}
		fmt.Fprint(out, tui.RenderLogs(trip, days))
		return nil
	},
}

func loadTrip(ctx context.Context) (domain.TripRecord, error) {
	if logsSession == "" {
		return repo.NewFileTripSlotRepo(logsFile).Load(ctx, repo.LocalSession)
	}

	id, err := uuid.Parse(logsSession)
	if err != nil {
		return domain.TripRecord{}, fmt.Errorf("commands.logs: invalid --session: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return domain.TripRecord{}, err
	}
	slots, closeSlots, err := openSlots(ctx, cfg, newLogger(os.Stderr, cfg.LogLevel))
	if err != nil {
		return domain.TripRecord{}, err
	}
	defer closeSlots()
	return slots.Load(ctx, id)
}

func init() {
	logsCmd.Flags().StringVar(&logsFile, "file", DefaultTripFile, "trip slot file written by \"eldplan plan\"")
	logsCmd.Flags().StringVar(&logsSession, "session", "", "read this web session's trip from the configured store")
	logsCmd.Flags().IntVar(&logsDay, "day", 0, "print only this day (1-based)")
	logsCmd.Flags().BoolVar(&logsDebug, "debug", false, "dump the trip and generated logs as Go values")
}
