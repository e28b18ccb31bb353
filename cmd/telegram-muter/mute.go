package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aensidhe/telegram-muter/internal/config"
	"github.com/aensidhe/telegram-muter/internal/muter"
	"github.com/aensidhe/telegram-muter/internal/schedule"
	"github.com/aensidhe/telegram-muter/internal/telegram"
	"github.com/spf13/cobra"
)

func muteCmd() *cobra.Command {
	var finishTheDay bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "mute",
		Short: "Mute all group chats until the next working day",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMute(cmd.Context(), muter.Options{FinishTheDay: finishTheDay, DryRun: dryRun})
		},
	}

	cmd.Flags().BoolVar(&finishTheDay, "finish-the-day", false, "Mute even while the working day is still going")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview actions without changing notify settings")

	return cmd
}

func unmuteCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "unmute",
		Short: "Lift the mutes a previous mute run has set",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnmute(cmd.Context(), dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview actions without changing notify settings")

	return cmd
}

// loadComponents loads the config and builds the schedule manager and the
// Telegram client from it
func loadComponents() (*config.Config, *schedule.Manager, *telegram.Client, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ExpandEnvVars()

	schedules, err := schedule.NewManager(cfg.ScheduleSpecs(), cfg.GroupSettings)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid schedule configuration: %w", err)
	}

	client := telegram.NewClient(
		cfg.Auth.APIID,
		cfg.Auth.APIHash,
		cfg.Auth.PhoneNumber,
		cfg.Auth.GetSessionFile(),
		logger,
	)

	return cfg, schedules, client, nil
}

func runMute(ctx context.Context, opts muter.Options) error {
	_, schedules, client, err := loadComponents()
	if err != nil {
		return err
	}

	var summary *muter.Summary
	err = client.Run(ctx, func(ctx context.Context, api *telegram.API) error {
		var runErr error
		summary, runErr = muter.New(schedules, api, logger).MuteAll(ctx, opts)
		return runErr
	})
	if err != nil {
		return fmt.Errorf("mute failed: %w", err)
	}

	printMuteSummary(summary)
	return nil
}

func runUnmute(ctx context.Context, dryRun bool) error {
	_, schedules, client, err := loadComponents()
	if err != nil {
		return err
	}

	var summary *muter.Summary
	err = client.Run(ctx, func(ctx context.Context, api *telegram.API) error {
		var runErr error
		summary, runErr = muter.New(schedules, api, logger).UnmuteAll(ctx, dryRun)
		return runErr
	})
	if err != nil {
		return fmt.Errorf("unmute failed: %w", err)
	}

	printUnmuteSummary(summary)
	return nil
}

func printMuteSummary(summary *muter.Summary) {
	if len(summary.Results) == 0 {
		fmt.Println("🔇 No group chats found")
		return
	}

	fmt.Printf("🔇 Processed %d group chat(s)\n", len(summary.Results))
	for _, r := range summary.Results {
		switch r.Action {
		case muter.ActionMuted:
			fmt.Printf("  ✅ %s [%s] muted until %s\n", r.Title, r.Schedule, formatDeadline(r.Until))
		case muter.ActionAlreadyMuted:
			fmt.Printf("  💤 %s already muted until %s\n", r.Title, formatDeadline(r.Until))
		case muter.ActionWorkingHours:
			fmt.Printf("  🕐 %s [%s] working day is not over, use --finish-the-day to mute now\n", r.Title, r.Schedule)
		case muter.ActionFailed:
			fmt.Printf("  ❌ %s: %v\n", r.Title, r.Err)
		}
	}

	fmt.Printf("\nMuted %d, already muted %d, in working hours %d, failed %d\n",
		summary.Count(muter.ActionMuted),
		summary.Count(muter.ActionAlreadyMuted),
		summary.Count(muter.ActionWorkingHours),
		summary.Count(muter.ActionFailed))

	if summary.DryRun {
		fmt.Println("\n[DRY RUN] No notify settings were changed")
	}
}

func printUnmuteSummary(summary *muter.Summary) {
	if len(summary.Results) == 0 {
		fmt.Println("🔊 No group chats found")
		return
	}

	fmt.Printf("🔊 Processed %d group chat(s)\n", len(summary.Results))
	for _, r := range summary.Results {
		switch r.Action {
		case muter.ActionUnmuted:
			fmt.Printf("  ✅ %s unmuted\n", r.Title)
		case muter.ActionKept:
			fmt.Printf("  ✋ %s muted until %s by something else, keeping it\n", r.Title, formatDeadline(r.Until))
		case muter.ActionFailed:
			fmt.Printf("  ❌ %s: %v\n", r.Title, r.Err)
		}
	}

	fmt.Printf("\nUnmuted %d, not muted %d, kept %d, failed %d\n",
		summary.Count(muter.ActionUnmuted),
		summary.Count(muter.ActionNotMuted),
		summary.Count(muter.ActionKept),
		summary.Count(muter.ActionFailed))

	if summary.DryRun {
		fmt.Println("\n[DRY RUN] No notify settings were changed")
	}
}

func formatDeadline(deadline time.Time) string {
	return deadline.Format("2006-01-02 15:04:05 MST")
}
