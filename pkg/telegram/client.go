package telegram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tdtelegram "github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/auth/qrlogin"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
	"rsc.io/qr"

	errs "tgmedia/pkg/errors"
	"tgmedia/pkg/logger"
	"tgmedia/pkg/ratelimit"
	"tgmedia/pkg/retry"
)

// Config holds the settings needed to open an MTProto session
type Config struct {
	APIID       int
	APIHash     string
	SessionPath string

	// Limiter paces history and download requests. Nil means unlimited.
	Limiter ratelimit.Limiter
	// Retry bounds retries of transient request failures. Nil uses retry.DefaultConfig.
	Retry  *retry.Config
	Logger logger.Logger
}

// Client is a user-account Telegram client. Methods other than Run, Login
// and QRLogin are only valid inside the function passed to Run.
type Client struct {
	client     *tdtelegram.Client
	api        *tg.Client
	storage    *SafeFileSessionStorage
	loginToken <-chan struct{}
	downloader *downloader.Downloader
	limiter    ratelimit.Limiter
	retry      *retry.Config
	logger     logger.Logger
}

// NewClient validates the credentials and prepares a client. No network
// traffic happens until Run.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIID <= 0 || cfg.APIHash == "" {
		return nil, errs.InvalidInput("telegram api id and api hash are required")
	}
	if cfg.SessionPath == "" {
		return nil, errs.InvalidInput("telegram session path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.SessionPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	retryCfg := cfg.Retry
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}

	storage := &SafeFileSessionStorage{Path: cfg.SessionPath}
	dispatcher := tg.NewUpdateDispatcher()
	loginToken := qrlogin.OnLoginToken(dispatcher)

	client := tdtelegram.NewClient(cfg.APIID, cfg.APIHash, tdtelegram.Options{
		SessionStorage: storage,
		UpdateHandler:  dispatcher,
	})

	return &Client{
		client:     client,
		api:        client.API(),
		storage:    storage,
		loginToken: loginToken,
		downloader: downloader.NewDownloader(),
		limiter:    limiter,
		retry:      retryCfg,
		logger:     log.WithField("component", "telegram"),
	}, nil
}

// Run connects, makes sure the session is signed in and calls fn. With a
// nil authenticator an unauthorized session fails with ErrUnauthorized.
func (c *Client) Run(ctx context.Context, authenticator auth.UserAuthenticator, fn func(ctx context.Context) error) error {
	return c.client.Run(ctx, func(runCtx context.Context) error {
		if err := c.ensureAuthorized(runCtx, authenticator); err != nil {
			return err
		}
		return fn(runCtx)
	})
}

func (c *Client) ensureAuthorized(ctx context.Context, authenticator auth.UserAuthenticator) error {
	status, err := c.client.Auth().Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get auth status: %w", mapError(err))
	}
	if status.Authorized {
		c.logger.WithField("user", userDisplay(status.User)).Debug("Session authorized")
		return nil
	}
	if authenticator == nil {
		return ErrUnauthorized
	}

	c.logger.Info("Signing in")
	flow := auth.NewFlow(authenticator, auth.SendCodeOptions{})
	if err := c.client.Auth().IfNecessary(ctx, flow); err != nil {
		return fmt.Errorf("sign in failed: %w", mapError(err))
	}
	c.logger.Info("Signed in")
	return nil
}

// Login signs in with the code flow if needed and returns the account's
// display name
func (c *Client) Login(ctx context.Context, authenticator auth.UserAuthenticator) (string, error) {
	var name string
	err := c.Run(ctx, authenticator, func(runCtx context.Context) error {
		self, err := c.client.Self(runCtx)
		if err != nil {
			return mapError(err)
		}
		name = userDisplay(self)
		return nil
	})
	return name, err
}

// QRToken is a login token rendered for display
type QRToken struct {
	URL     string
	PNG     []byte
	Expires time.Time
}

// QRLogin signs in by scanning a QR code from an already logged-in device.
// show is called for every token refresh. password is asked only when the
// account has two-step verification enabled.
func (c *Client) QRLogin(ctx context.Context, show func(QRToken) error, password func(ctx context.Context) (string, error)) (string, error) {
	var name string
	err := c.client.Run(ctx, func(runCtx context.Context) error {
		status, err := c.client.Auth().Status(runCtx)
		if err != nil {
			return mapError(err)
		}
		if !status.Authorized {
			_, err := c.client.QR().Auth(runCtx, c.loginToken, func(_ context.Context, token qrlogin.Token) error {
				code, err := qr.Encode(token.URL(), qr.M)
				if err != nil {
					return err
				}
				return show(QRToken{URL: token.URL(), PNG: code.PNG(), Expires: token.Expires()})
			})
			if err != nil {
				if !isPasswordNeeded(err) {
					return fmt.Errorf("qr login failed: %w", mapError(err))
				}
				pw, err := password(runCtx)
				if err != nil {
					return err
				}
				if _, err := c.client.Auth().Password(runCtx, pw); err != nil {
					return fmt.Errorf("password check failed: %w", mapError(err))
				}
			}
		}

		self, err := c.client.Self(runCtx)
		if err != nil {
			return mapError(err)
		}
		name = userDisplay(self)
		return nil
	})
	return name, err
}

// Logout removes the local session file
func (c *Client) Logout() error {
	return c.storage.Remove()
}

// call runs one RPC under the limiter and the retry policy, mapping errors
// at the transport boundary
func call[T any](ctx context.Context, c *Client, fn func(ctx context.Context) (T, error)) (T, error) {
	return retry.DoWithResult[T](ctx, func(ctx context.Context) (T, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			var zero T
			return zero, err
		}
		v, err := fn(ctx)
		return v, mapError(err)
	}, c.retry)
}
