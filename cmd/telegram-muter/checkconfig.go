package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/aensidhe/telegram-muter/internal/schedule"
	"github.com/spf13/cobra"
)

func checkConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Validate the configuration and show the effective schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckConfig()
		},
	}
}

func runCheckConfig() error {
	fmt.Println("🔍 Checking configuration...")

	cfg, schedules, _, err := loadComponents()
	if err != nil {
		return err
	}
	now := time.Now()

	fmt.Println("\n🔐 Telegram")
	fmt.Printf("  api_id:       %d\n", cfg.Auth.APIID)
	fmt.Printf("  api_hash:     %s\n", maskSecret(cfg.Auth.APIHash))
	fmt.Printf("  phone_number: %s\n", cfg.Auth.PhoneNumber)
	fmt.Printf("  session_file: %s\n", cfg.Auth.GetSessionFile())

	if cfg.Log.File != "" {
		fmt.Println("\n📝 Logging")
		fmt.Printf("  file:  %s\n", cfg.Log.File)
		fmt.Printf("  level: %s\n", orNone(cfg.Log.Level))
	}

	fmt.Println("\n📅 Schedules")
	for _, name := range schedules.Names() {
		sched, _ := schedules.Schedule(name)

		fmt.Printf("  %s:\n", sched.Name)
		fmt.Printf("    start_of_day:        %s\n", sched.StartOfDay)
		if sched.EndOfDay != nil {
			fmt.Printf("    end_of_day:          %s\n", sched.EndOfDay)
		}
		fmt.Printf("    timezone:            %s\n", sched.Timezone)
		fmt.Printf("    weekends:            %s\n", orNone(sched.Weekends.String()))
		fmt.Printf("    working_weekends:    %s\n", orNone(sched.WorkingWeekends.String()))
		fmt.Printf("    nonworking_weekdays: %s\n", orNone(sched.NonworkingWeekdays.String()))

		deadline, err := sched.NextMuteEnd(now)
		if err != nil {
			return fmt.Errorf("schedule %q: %w", sched.Name, err)
		}
		fmt.Printf("    next working day:    %s\n", deadline.Format("Mon, 2006-01-02"))
		fmt.Printf("    mute would end:      %s\n", deadline.Format("Mon, 2006-01-02 15:04:05 MST"))
	}

	fmt.Println("\n👥 Group settings")
	for _, g := range cfg.GroupSettings {
		if g.Name != "" {
			fmt.Printf("  chat %q -> schedule %q\n", g.Name, g.Schedule)
		} else {
			fmt.Printf("  pattern %q -> schedule %q\n", g.NamePattern, g.Schedule)
		}
	}
	fmt.Printf("  everything else -> schedule %q\n", schedule.DefaultName)

	fmt.Println("\n✅ Configuration is valid")
	return nil
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
