package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
)

// PromptFunc asks the user for one value. Hidden input must not be echoed.
type PromptFunc func(ctx context.Context, label string, hidden bool) (string, error)

// Authenticator drives the phone, code and 2FA sign-in flow through a
// prompt. PhoneNumber skips the phone prompt when set.
type Authenticator struct {
	PhoneNumber string
	Prompt      PromptFunc
}

var _ auth.UserAuthenticator = (*Authenticator)(nil)

func (a *Authenticator) ask(ctx context.Context, label string, hidden bool) (string, error) {
	if a.Prompt == nil {
		return "", errors.New("no prompt configured for interactive sign-in")
	}
	value, err := a.Prompt(ctx, label, hidden)
	if err != nil {
		return "", err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return value, nil
}

func (a *Authenticator) Phone(ctx context.Context) (string, error) {
	if a.PhoneNumber != "" {
		return a.PhoneNumber, nil
	}
	return a.ask(ctx, "Phone number (international format)", false)
}

func (a *Authenticator) Code(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
	return a.ask(ctx, "Login code", false)
}

func (a *Authenticator) Password(ctx context.Context) (string, error) {
	return a.ask(ctx, "Two-step verification password", true)
}

func (a *Authenticator) AcceptTermsOfService(_ context.Context, _ tg.HelpTermsOfService) error {
	return errors.New("terms of service must be accepted in an official client")
}

func (a *Authenticator) SignUp(_ context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("signing up a new account is not supported, register with an official client first")
}

func isPasswordNeeded(err error) bool {
	if errors.Is(err, auth.ErrPasswordAuthNeeded) {
		return true
	}
	if rpcErr, ok := tgerr.As(err); ok {
		return rpcErr.IsOneOf("SESSION_PASSWORD_NEEDED")
	}
	return false
}

func userDisplay(user *tg.User) string {
	if user == nil {
		return ""
	}
	name := strings.TrimSpace(strings.Join([]string{user.FirstName, user.LastName}, " "))
	if name != "" {
		return name
	}
	if user.Username != "" {
		return "@" + user.Username
	}
	return fmt.Sprintf("User %d", user.ID)
}
