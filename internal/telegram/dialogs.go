package telegram

import (
	"context"
	"fmt"

	"github.com/gotd/td/tg"
	"go.uber.org/zap"
)

const dialogsPageSize = 100

// GroupChat is a group conversation the account participates in: a basic
// group or a megagroup channel
type GroupChat struct {
	Title string
	Peer  tg.InputPeerClass
}

// dialogPage is one page of the dialog list with the entities needed to
// resolve its peers
type dialogPage struct {
	dialogs  []tg.DialogClass
	messages []tg.MessageClass
	chats    []tg.ChatClass
	users    []tg.UserClass
	complete bool
}

// GroupChats enumerates all dialogs of the account and returns the group
// conversations among them. Private dialogs are skipped silently, broadcast
// channels and chats without access are skipped with a log entry.
func (a *API) GroupChats(ctx context.Context) ([]GroupChat, error) {
	var (
		groups     []GroupChat
		offsetDate int
		offsetID   int
		offsetPeer tg.InputPeerClass = &tg.InputPeerEmpty{}
	)

	for {
		res, err := a.raw.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
			OffsetDate: offsetDate,
			OffsetID:   offsetID,
			OffsetPeer: offsetPeer,
			Limit:      dialogsPageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get dialogs: %w", err)
		}

		page, ok := dialogsPage(res)
		if !ok {
			return nil, fmt.Errorf("unexpected dialogs response %T", res)
		}

		groups = append(groups, a.classify(page)...)

		if page.complete || len(page.dialogs) < dialogsPageSize {
			break
		}

		offsetDate, offsetID, offsetPeer, ok = nextOffsets(page)
		if !ok {
			a.logger.Warn("Cannot derive next dialogs offset, stopping pagination",
				zap.Int("dialogs", len(page.dialogs)))
			break
		}
	}

	a.logger.Info("Collected group chats", zap.Int("count", len(groups)))
	return groups, nil
}

func dialogsPage(res tg.MessagesDialogsClass) (dialogPage, bool) {
	switch d := res.(type) {
	case *tg.MessagesDialogs:
		return dialogPage{dialogs: d.Dialogs, messages: d.Messages, chats: d.Chats, users: d.Users, complete: true}, true
	case *tg.MessagesDialogsSlice:
		return dialogPage{dialogs: d.Dialogs, messages: d.Messages, chats: d.Chats, users: d.Users}, true
	default:
		return dialogPage{}, false
	}
}

func (a *API) classify(page dialogPage) []GroupChat {
	chats := make(map[int64]tg.ChatClass, len(page.chats))
	for _, entity := range page.chats {
		switch c := entity.(type) {
		case *tg.Chat:
			chats[c.ID] = c
		case *tg.ChatForbidden:
			chats[c.ID] = c
		case *tg.Channel:
			chats[c.ID] = c
		case *tg.ChannelForbidden:
			chats[c.ID] = c
		}
	}

	var groups []GroupChat
	for _, d := range page.dialogs {
		dialog, ok := d.(*tg.Dialog)
		if !ok {
			// Dialog folders carry no peer of their own.
			continue
		}
		if group, ok := a.groupFromPeer(dialog.Peer, chats); ok {
			groups = append(groups, group)
		}
	}
	return groups
}

// groupFromPeer resolves a dialog peer into a group chat that can be muted
func (a *API) groupFromPeer(peer tg.PeerClass, chats map[int64]tg.ChatClass) (GroupChat, bool) {
	switch p := peer.(type) {
	case *tg.PeerChat:
		switch chat := chats[p.ChatID].(type) {
		case *tg.Chat:
			if chat.Deactivated {
				a.logger.Debug("Skipping deactivated chat", zap.String("title", chat.Title))
				return GroupChat{}, false
			}
			return GroupChat{Title: chat.Title, Peer: &tg.InputPeerChat{ChatID: chat.ID}}, true
		case *tg.ChatForbidden:
			a.logger.Info("Skipping chat without access", zap.String("title", chat.Title))
			return GroupChat{}, false
		default:
			a.logger.Warn("Dialog references unknown chat", zap.Int64("chat_id", p.ChatID))
			return GroupChat{}, false
		}
	case *tg.PeerChannel:
		switch channel := chats[p.ChannelID].(type) {
		case *tg.Channel:
			if channel.Broadcast {
				a.logger.Debug("Skipping broadcast channel", zap.String("title", channel.Title))
				return GroupChat{}, false
			}
			accessHash, _ := channel.GetAccessHash()
			return GroupChat{Title: channel.Title, Peer: &tg.InputPeerChannel{ChannelID: channel.ID, AccessHash: accessHash}}, true
		case *tg.ChannelForbidden:
			a.logger.Info("Skipping channel without access", zap.String("title", channel.Title))
			return GroupChat{}, false
		default:
			a.logger.Warn("Dialog references unknown channel", zap.Int64("channel_id", p.ChannelID))
			return GroupChat{}, false
		}
	default:
		// Private dialogs are not group conversations.
		return GroupChat{}, false
	}
}

// nextOffsets derives the offsets for the next dialogs page from the last
// dialog of the current one and the date of its top message
func nextOffsets(page dialogPage) (offsetDate, offsetID int, offsetPeer tg.InputPeerClass, ok bool) {
	if len(page.dialogs) == 0 {
		return 0, 0, nil, false
	}

	last, isDialog := page.dialogs[len(page.dialogs)-1].(*tg.Dialog)
	if !isDialog {
		return 0, 0, nil, false
	}

	date, found := topMessageDate(page.messages, last.Peer, last.TopMessage)
	if !found {
		return 0, 0, nil, false
	}

	return date, last.TopMessage, offsetPeerFor(last.Peer, page), true
}

// topMessageDate finds the message with the given id in the given dialog
// and returns its date
func topMessageDate(messages []tg.MessageClass, peer tg.PeerClass, id int) (int, bool) {
	for _, m := range messages {
		switch msg := m.(type) {
		case *tg.Message:
			if msg.ID == id && samePeer(msg.PeerID, peer) {
				return msg.Date, true
			}
		case *tg.MessageService:
			if msg.ID == id && samePeer(msg.PeerID, peer) {
				return msg.Date, true
			}
		}
	}
	return 0, false
}

func offsetPeerFor(peer tg.PeerClass, page dialogPage) tg.InputPeerClass {
	switch p := peer.(type) {
	case *tg.PeerUser:
		for _, entity := range page.users {
			if user, ok := entity.(*tg.User); ok && user.ID == p.UserID {
				accessHash, _ := user.GetAccessHash()
				return &tg.InputPeerUser{UserID: user.ID, AccessHash: accessHash}
			}
		}
	case *tg.PeerChat:
		return &tg.InputPeerChat{ChatID: p.ChatID}
	case *tg.PeerChannel:
		for _, entity := range page.chats {
			if channel, ok := entity.(*tg.Channel); ok && channel.ID == p.ChannelID {
				accessHash, _ := channel.GetAccessHash()
				return &tg.InputPeerChannel{ChannelID: channel.ID, AccessHash: accessHash}
			}
		}
	}
	return &tg.InputPeerEmpty{}
}

func samePeer(a, b tg.PeerClass) bool {
	switch pa := a.(type) {
	case *tg.PeerUser:
		pb, ok := b.(*tg.PeerUser)
		return ok && pa.UserID == pb.UserID
	case *tg.PeerChat:
		pb, ok := b.(*tg.PeerChat)
		return ok && pa.ChatID == pb.ChatID
	case *tg.PeerChannel:
		pb, ok := b.(*tg.PeerChannel)
		return ok && pa.ChannelID == pb.ChannelID
	}
	return false
}
