package muter

import (
	"context"
	"fmt"
	"time"

	"github.com/aensidhe/telegram-muter/internal/schedule"
	"github.com/aensidhe/telegram-muter/internal/telegram"
	"go.uber.org/zap"
)

// ChatService is the slice of the Telegram API the muting workflow needs
type ChatService interface {
	GroupChats(ctx context.Context) ([]telegram.GroupChat, error)
	NotifySettings(ctx context.Context, chat telegram.GroupChat) (time.Time, bool, error)
	MuteUntil(ctx context.Context, chat telegram.GroupChat, until time.Time) error
	Unmute(ctx context.Context, chat telegram.GroupChat) error
}

// Options control a mute run
type Options struct {
	// FinishTheDay mutes chats even while their schedule says the working
	// day is still going.
	FinishTheDay bool
	DryRun       bool
}

// ChatAction is what a run did to a single chat
type ChatAction string

const (
	ActionMuted        ChatAction = "muted"
	ActionAlreadyMuted ChatAction = "already muted"
	ActionWorkingHours ChatAction = "working hours"
	ActionUnmuted      ChatAction = "unmuted"
	ActionNotMuted     ChatAction = "not muted"
	ActionKept         ChatAction = "kept"
	ActionFailed       ChatAction = "failed"
)

// ChatResult is the outcome for a single chat
type ChatResult struct {
	Title    string
	Schedule string
	Action   ChatAction
	Until    time.Time
	Err      error
}

// Summary is the outcome of a whole run
type Summary struct {
	Results []ChatResult
	DryRun  bool
}

// Count returns how many chats ended up with the given action
func (s *Summary) Count(action ChatAction) int {
	count := 0
	for _, r := range s.Results {
		if r.Action == action {
			count++
		}
	}
	return count
}

// Muter mutes and unmutes group chats according to their schedules
type Muter struct {
	schedules *schedule.Manager
	chats     ChatService
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a new muter
func New(schedules *schedule.Manager, chats ChatService, logger *zap.Logger) *Muter {
	return &Muter{
		schedules: schedules,
		chats:     chats,
		logger:    logger,
		now:       time.Now,
	}
}

// MuteAll mutes every group chat until the start of the next working day of
// its schedule. Chats already muted past now and chats inside their working
// hours are left alone. Failures on single chats do not stop the run.
func (m *Muter) MuteAll(ctx context.Context, opts Options) (*Summary, error) {
	now := m.now()
	m.logger.Info("Starting mute run",
		zap.Time("now", now),
		zap.Bool("finish_the_day", opts.FinishTheDay),
		zap.Bool("dry_run", opts.DryRun))

	groups, err := m.chats.GroupChats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list group chats: %w", err)
	}

	// The deadline depends only on the schedule, not on the chat; resolve
	// it once per schedule.
	deadlines := make(map[string]time.Time)
	summary := &Summary{DryRun: opts.DryRun}

	for _, chat := range groups {
		result := m.muteChat(ctx, chat, now, opts, deadlines)
		if result.Err != nil {
			m.logger.Error("Failed to mute chat",
				zap.String("title", chat.Title),
				zap.Error(result.Err))
		}
		summary.Results = append(summary.Results, result)
	}

	m.logger.Info("Mute run completed",
		zap.Int("chats", len(summary.Results)),
		zap.Int("muted", summary.Count(ActionMuted)),
		zap.Int("already_muted", summary.Count(ActionAlreadyMuted)),
		zap.Int("working_hours", summary.Count(ActionWorkingHours)),
		zap.Int("failed", summary.Count(ActionFailed)),
		zap.Bool("dry_run", opts.DryRun))

	return summary, nil
}

func (m *Muter) muteChat(ctx context.Context, chat telegram.GroupChat, now time.Time, opts Options, deadlines map[string]time.Time) ChatResult {
	sched := m.schedules.ForGroup(chat.Title)
	result := ChatResult{Title: chat.Title, Schedule: sched.Name}

	if !opts.FinishTheDay {
		working, err := sched.InWorkingHours(now)
		if err != nil {
			result.Action = ActionFailed
			result.Err = fmt.Errorf("failed to check working hours: %w", err)
			return result
		}
		if working {
			result.Action = ActionWorkingHours
			m.logger.Info("Chat is inside working hours, not muting",
				zap.String("title", chat.Title),
				zap.String("schedule", sched.Name))
			return result
		}
	}

	until, ok := deadlines[sched.Name]
	if !ok {
		var err error
		until, err = sched.NextMuteEnd(now)
		if err != nil {
			result.Action = ActionFailed
			result.Err = fmt.Errorf("failed to resolve mute deadline: %w", err)
			return result
		}
		deadlines[sched.Name] = until
	}
	result.Until = until

	muteUntil, muted, err := m.chats.NotifySettings(ctx, chat)
	if err != nil {
		result.Action = ActionFailed
		result.Err = err
		return result
	}

	if muted && muteUntil.After(now) {
		result.Action = ActionAlreadyMuted
		result.Until = muteUntil
		m.logger.Info("Chat is already muted",
			zap.String("title", chat.Title),
			zap.Time("until", muteUntil))
		return result
	}

	if !opts.DryRun {
		if err := m.chats.MuteUntil(ctx, chat, until); err != nil {
			result.Action = ActionFailed
			result.Err = err
			return result
		}
	}

	result.Action = ActionMuted
	m.logger.Info("Chat muted",
		zap.String("title", chat.Title),
		zap.String("schedule", sched.Name),
		zap.Time("until", until),
		zap.Bool("dry_run", opts.DryRun))
	return result
}

// UnmuteAll lifts the mutes a previous run has set. A chat is unmuted only
// when its mute deadline matches the deadline its schedule resolves to now;
// chats muted by hand keep their settings.
func (m *Muter) UnmuteAll(ctx context.Context, dryRun bool) (*Summary, error) {
	now := m.now()
	m.logger.Info("Starting unmute run",
		zap.Time("now", now),
		zap.Bool("dry_run", dryRun))

	groups, err := m.chats.GroupChats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list group chats: %w", err)
	}

	deadlines := make(map[string]time.Time)
	summary := &Summary{DryRun: dryRun}

	for _, chat := range groups {
		result := m.unmuteChat(ctx, chat, now, dryRun, deadlines)
		if result.Err != nil {
			m.logger.Error("Failed to unmute chat",
				zap.String("title", chat.Title),
				zap.Error(result.Err))
		}
		summary.Results = append(summary.Results, result)
	}

	m.logger.Info("Unmute run completed",
		zap.Int("chats", len(summary.Results)),
		zap.Int("unmuted", summary.Count(ActionUnmuted)),
		zap.Int("not_muted", summary.Count(ActionNotMuted)),
		zap.Int("kept", summary.Count(ActionKept)),
		zap.Int("failed", summary.Count(ActionFailed)),
		zap.Bool("dry_run", dryRun))

	return summary, nil
}

func (m *Muter) unmuteChat(ctx context.Context, chat telegram.GroupChat, now time.Time, dryRun bool, deadlines map[string]time.Time) ChatResult {
	sched := m.schedules.ForGroup(chat.Title)
	result := ChatResult{Title: chat.Title, Schedule: sched.Name}

	until, ok := deadlines[sched.Name]
	if !ok {
		var err error
		until, err = sched.NextMuteEnd(now)
		if err != nil {
			result.Action = ActionFailed
			result.Err = fmt.Errorf("failed to resolve mute deadline: %w", err)
			return result
		}
		deadlines[sched.Name] = until
	}

	muteUntil, muted, err := m.chats.NotifySettings(ctx, chat)
	if err != nil {
		result.Action = ActionFailed
		result.Err = err
		return result
	}

	if !muted {
		result.Action = ActionNotMuted
		return result
	}

	if !muteUntil.Equal(until) {
		result.Action = ActionKept
		result.Until = muteUntil
		m.logger.Info("Chat mute deadline does not match the schedule, keeping it",
			zap.String("title", chat.Title),
			zap.Time("mute_until", muteUntil),
			zap.Time("schedule_deadline", until))
		return result
	}

	if !dryRun {
		if err := m.chats.Unmute(ctx, chat); err != nil {
			result.Action = ActionFailed
			result.Err = err
			return result
		}
	}

	result.Action = ActionUnmuted
	m.logger.Info("Chat unmuted",
		zap.String("title", chat.Title),
		zap.Bool("dry_run", dryRun))
	return result
}
