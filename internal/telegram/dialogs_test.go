package telegram

import (
	"testing"

	"github.com/gotd/td/tg"
	"go.uber.org/zap"
)

func testAPI() *API {
	return &API{logger: zap.NewNop()}
}

func chatDialog(chatID int64) *tg.Dialog {
	return &tg.Dialog{Peer: &tg.PeerChat{ChatID: chatID}}
}

func channelDialog(channelID int64) *tg.Dialog {
	return &tg.Dialog{Peer: &tg.PeerChannel{ChannelID: channelID}}
}

func megagroup(id, accessHash int64, title string) *tg.Channel {
	channel := &tg.Channel{ID: id, Title: title, Megagroup: true}
	channel.SetAccessHash(accessHash)
	return channel
}

func broadcast(id, accessHash int64, title string) *tg.Channel {
	channel := &tg.Channel{ID: id, Title: title, Broadcast: true}
	channel.SetAccessHash(accessHash)
	return channel
}

func TestClassify(t *testing.T) {
	page := dialogPage{
		dialogs: []tg.DialogClass{
			&tg.DialogFolder{},
			&tg.Dialog{Peer: &tg.PeerUser{UserID: 1}},
			chatDialog(10),
			chatDialog(11),
			chatDialog(12),
			chatDialog(13),
			channelDialog(20),
			channelDialog(21),
			channelDialog(22),
			channelDialog(23),
		},
		chats: []tg.ChatClass{
			&tg.Chat{ID: 10, Title: "team"},
			&tg.Chat{ID: 11, Title: "old team", Deactivated: true},
			&tg.ChatForbidden{ID: 12, Title: "kicked"},
			megagroup(20, 555, "announcements-discussion"),
			broadcast(21, 556, "news channel"),
			&tg.ChannelForbidden{ID: 22, Title: "left channel"},
		},
	}

	groups := testAPI().classify(page)

	if len(groups) != 2 {
		t.Fatalf("classify() returned %d groups, want 2", len(groups))
	}

	if groups[0].Title != "team" {
		t.Errorf("groups[0].Title = %q, want %q", groups[0].Title, "team")
	}
	chatPeer, ok := groups[0].Peer.(*tg.InputPeerChat)
	if !ok {
		t.Fatalf("groups[0].Peer = %T, want *tg.InputPeerChat", groups[0].Peer)
	}
	if chatPeer.ChatID != 10 {
		t.Errorf("groups[0] chat ID = %d, want 10", chatPeer.ChatID)
	}

	if groups[1].Title != "announcements-discussion" {
		t.Errorf("groups[1].Title = %q, want %q", groups[1].Title, "announcements-discussion")
	}
	channelPeer, ok := groups[1].Peer.(*tg.InputPeerChannel)
	if !ok {
		t.Fatalf("groups[1].Peer = %T, want *tg.InputPeerChannel", groups[1].Peer)
	}
	if channelPeer.ChannelID != 20 || channelPeer.AccessHash != 555 {
		t.Errorf("groups[1] channel peer = {%d %d}, want {20 555}", channelPeer.ChannelID, channelPeer.AccessHash)
	}
}

func TestClassifyEmptyPage(t *testing.T) {
	if groups := testAPI().classify(dialogPage{}); len(groups) != 0 {
		t.Errorf("classify(empty) returned %d groups, want 0", len(groups))
	}
}

func TestNextOffsets(t *testing.T) {
	t.Run("chat top message", func(t *testing.T) {
		page := dialogPage{
			dialogs: []tg.DialogClass{
				chatDialog(10),
				&tg.Dialog{Peer: &tg.PeerChat{ChatID: 11}, TopMessage: 40},
			},
			messages: []tg.MessageClass{
				&tg.Message{ID: 40, PeerID: &tg.PeerChat{ChatID: 10}, Date: 1100},
				&tg.Message{ID: 40, PeerID: &tg.PeerChat{ChatID: 11}, Date: 1700000400},
			},
		}

		date, id, peer, ok := nextOffsets(page)
		if !ok {
			t.Fatal("nextOffsets() ok = false, want true")
		}
		if date != 1700000400 || id != 40 {
			t.Errorf("nextOffsets() = (%d, %d), want (1700000400, 40)", date, id)
		}
		chatPeer, isChat := peer.(*tg.InputPeerChat)
		if !isChat || chatPeer.ChatID != 11 {
			t.Errorf("nextOffsets() peer = %#v, want InputPeerChat{ChatID: 11}", peer)
		}
	})

	t.Run("service top message", func(t *testing.T) {
		page := dialogPage{
			dialogs: []tg.DialogClass{
				&tg.Dialog{Peer: &tg.PeerChat{ChatID: 12}, TopMessage: 7},
			},
			messages: []tg.MessageClass{
				&tg.MessageService{ID: 7, PeerID: &tg.PeerChat{ChatID: 12}, Date: 1650000000},
			},
		}

		date, id, _, ok := nextOffsets(page)
		if !ok {
			t.Fatal("nextOffsets() ok = false, want true")
		}
		if date != 1650000000 || id != 7 {
			t.Errorf("nextOffsets() = (%d, %d), want (1650000000, 7)", date, id)
		}
	})

	t.Run("channel peer carries access hash", func(t *testing.T) {
		page := dialogPage{
			dialogs: []tg.DialogClass{
				&tg.Dialog{Peer: &tg.PeerChannel{ChannelID: 20}, TopMessage: 3},
			},
			messages: []tg.MessageClass{
				&tg.Message{ID: 3, PeerID: &tg.PeerChannel{ChannelID: 20}, Date: 1600000000},
			},
			chats: []tg.ChatClass{megagroup(20, 999, "group")},
		}

		_, _, peer, ok := nextOffsets(page)
		if !ok {
			t.Fatal("nextOffsets() ok = false, want true")
		}
		channelPeer, isChannel := peer.(*tg.InputPeerChannel)
		if !isChannel || channelPeer.ChannelID != 20 || channelPeer.AccessHash != 999 {
			t.Errorf("nextOffsets() peer = %#v, want InputPeerChannel{ChannelID: 20, AccessHash: 999}", peer)
		}
	})

	t.Run("user peer carries access hash", func(t *testing.T) {
		user := &tg.User{ID: 5}
		user.SetAccessHash(444)
		page := dialogPage{
			dialogs: []tg.DialogClass{
				&tg.Dialog{Peer: &tg.PeerUser{UserID: 5}, TopMessage: 2},
			},
			messages: []tg.MessageClass{
				&tg.Message{ID: 2, PeerID: &tg.PeerUser{UserID: 5}, Date: 1500000000},
			},
			users: []tg.UserClass{user},
		}

		_, _, peer, ok := nextOffsets(page)
		if !ok {
			t.Fatal("nextOffsets() ok = false, want true")
		}
		userPeer, isUser := peer.(*tg.InputPeerUser)
		if !isUser || userPeer.UserID != 5 || userPeer.AccessHash != 444 {
			t.Errorf("nextOffsets() peer = %#v, want InputPeerUser{UserID: 5, AccessHash: 444}", peer)
		}
	})

	t.Run("missing top message", func(t *testing.T) {
		page := dialogPage{
			dialogs: []tg.DialogClass{
				&tg.Dialog{Peer: &tg.PeerChat{ChatID: 10}, TopMessage: 40},
			},
			messages: []tg.MessageClass{
				&tg.Message{ID: 40, PeerID: &tg.PeerChat{ChatID: 99}, Date: 1100},
			},
		}

		if _, _, _, ok := nextOffsets(page); ok {
			t.Error("nextOffsets() ok = true, want false when the top message is missing")
		}
	})

	t.Run("empty page", func(t *testing.T) {
		if _, _, _, ok := nextOffsets(dialogPage{}); ok {
			t.Error("nextOffsets() ok = true, want false for an empty page")
		}
	})

	t.Run("folder as last dialog", func(t *testing.T) {
		page := dialogPage{dialogs: []tg.DialogClass{&tg.DialogFolder{}}}
		if _, _, _, ok := nextOffsets(page); ok {
			t.Error("nextOffsets() ok = true, want false when the last dialog is a folder")
		}
	})
}

func TestDialogsPage(t *testing.T) {
	complete, ok := dialogsPage(&tg.MessagesDialogs{Dialogs: []tg.DialogClass{chatDialog(1)}})
	if !ok {
		t.Fatal("dialogsPage(MessagesDialogs) ok = false, want true")
	}
	if !complete.complete || len(complete.dialogs) != 1 {
		t.Errorf("dialogsPage(MessagesDialogs) = {complete: %v, dialogs: %d}, want complete with 1 dialog",
			complete.complete, len(complete.dialogs))
	}

	slice, ok := dialogsPage(&tg.MessagesDialogsSlice{Dialogs: []tg.DialogClass{chatDialog(1)}})
	if !ok {
		t.Fatal("dialogsPage(MessagesDialogsSlice) ok = false, want true")
	}
	if slice.complete {
		t.Error("dialogsPage(MessagesDialogsSlice) complete = true, want false")
	}

	if _, ok := dialogsPage(&tg.MessagesDialogsNotModified{}); ok {
		t.Error("dialogsPage(MessagesDialogsNotModified) ok = true, want false")
	}
}

func TestSamePeer(t *testing.T) {
	tests := []struct {
		name string
		a, b tg.PeerClass
		want bool
	}{
		{"same user", &tg.PeerUser{UserID: 1}, &tg.PeerUser{UserID: 1}, true},
		{"different user", &tg.PeerUser{UserID: 1}, &tg.PeerUser{UserID: 2}, false},
		{"same chat", &tg.PeerChat{ChatID: 3}, &tg.PeerChat{ChatID: 3}, true},
		{"same channel", &tg.PeerChannel{ChannelID: 4}, &tg.PeerChannel{ChannelID: 4}, true},
		{"chat vs channel", &tg.PeerChat{ChatID: 5}, &tg.PeerChannel{ChannelID: 5}, false},
		{"user vs chat", &tg.PeerUser{UserID: 6}, &tg.PeerChat{ChatID: 6}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := samePeer(tt.a, tt.b); got != tt.want {
				t.Errorf("samePeer(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
