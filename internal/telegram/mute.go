package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/gotd/td/tg"
	"go.uber.org/zap"
)

// NotifySettings returns the chat's current mute deadline. The second
// result is false when the chat is not muted.
func (a *API) NotifySettings(ctx context.Context, chat GroupChat) (time.Time, bool, error) {
	settings, err := a.raw.AccountGetNotifySettings(ctx, &tg.InputNotifyPeer{Peer: chat.Peer})
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get notify settings for %q: %w", chat.Title, err)
	}

	muteUntil, ok := settings.GetMuteUntil()
	if !ok || muteUntil == 0 {
		return time.Time{}, false, nil
	}
	return time.Unix(int64(muteUntil), 0), true, nil
}

// MuteUntil mutes the chat until the given instant and turns message
// previews off for the muted period
func (a *API) MuteUntil(ctx context.Context, chat GroupChat, until time.Time) error {
	settings := tg.InputPeerNotifySettings{}
	settings.SetMuteUntil(int(until.Unix()))
	settings.SetShowPreviews(false)

	_, err := a.raw.AccountUpdateNotifySettings(ctx, &tg.AccountUpdateNotifySettingsRequest{
		Peer:     &tg.InputNotifyPeer{Peer: chat.Peer},
		Settings: settings,
	})
	if err != nil {
		return fmt.Errorf("failed to mute %q: %w", chat.Title, err)
	}

	a.logger.Debug("Chat muted", zap.String("title", chat.Title), zap.Time("until", until))
	return nil
}

// Unmute lifts the chat's mute by resetting the mute deadline
func (a *API) Unmute(ctx context.Context, chat GroupChat) error {
	settings := tg.InputPeerNotifySettings{}
	settings.SetMuteUntil(0)

	_, err := a.raw.AccountUpdateNotifySettings(ctx, &tg.AccountUpdateNotifySettingsRequest{
		Peer:     &tg.InputNotifyPeer{Peer: chat.Peer},
		Settings: settings,
	})
	if err != nil {
		return fmt.Errorf("failed to unmute %q: %w", chat.Title, err)
	}

	a.logger.Debug("Chat unmuted", zap.String("title", chat.Title))
	return nil
}
