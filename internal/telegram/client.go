package telegram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gotd/contrib/middleware/floodwait"
	"github.com/gotd/contrib/middleware/ratelimit"
	"github.com/gotd/td/session"
	tdclient "github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// Telegram applies server-side limits per account; the client-side
	// limiter keeps one run well under them.
	rateInterval = 100 * time.Millisecond
	rateBurst    = 5

	maxFloodWaitRetries = 10
)

// Client wraps the MTProto client with session persistence, flood-wait
// handling and client-side rate limiting
type Client struct {
	apiID       int
	apiHash     string
	phone       string
	sessionFile string
	logger      *zap.Logger
}

// NewClient creates a new Telegram client
func NewClient(apiID int, apiHash, phone, sessionFile string, logger *zap.Logger) *Client {
	return &Client{
		apiID:       apiID,
		apiHash:     apiHash,
		phone:       phone,
		sessionFile: sessionFile,
		logger:      logger,
	}
}

// API exposes the account-level calls the muting workflow needs
type API struct {
	raw    *tg.Client
	logger *zap.Logger
}

// Run connects to Telegram, authorizes the session if needed and calls fn
// with a ready API. The connection is closed when fn returns.
func (c *Client) Run(ctx context.Context, fn func(ctx context.Context, api *API) error) error {
	if dir := filepath.Dir(c.sessionFile); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}

	options := tdclient.Options{
		SessionStorage: &session.FileStorage{Path: c.sessionFile},
		Logger:         c.logger.Named("td"),
		Middlewares: []tdclient.Middleware{
			floodwait.NewSimpleWaiter().WithMaxRetries(maxFloodWaitRetries),
			ratelimit.New(rate.Every(rateInterval), rateBurst),
		},
	}

	client := tdclient.NewClient(c.apiID, c.apiHash, options)
	return client.Run(ctx, func(ctx context.Context) error {
		if err := c.ensureAuth(ctx, client); err != nil {
			return err
		}
		return fn(ctx, &API{raw: client.API(), logger: c.logger})
	})
}

func (c *Client) ensureAuth(ctx context.Context, client *tdclient.Client) error {
	status, err := client.Auth().Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get auth status: %w", err)
	}

	if !status.Authorized {
		fmt.Printf("🔐 Session is not authorized, logging in as %s\n", c.phone)
		flow := auth.NewFlow(termAuth{phone: c.phone}, auth.SendCodeOptions{})
		if err := client.Auth().IfNecessary(ctx, flow); err != nil {
			return fmt.Errorf("authorization failed: %w", err)
		}
	}

	self, err := client.Self(ctx)
	if err != nil {
		return fmt.Errorf("failed to get account info: %w", err)
	}

	firstName, _ := self.GetFirstName()
	c.logger.Info("Authorized",
		zap.Int64("user_id", self.ID),
		zap.String("first_name", firstName))

	return nil
}
