package telegram

import (
	"context"
	"errors"

	"github.com/gotd/td/tgerr"

	errs "tgmedia/pkg/errors"
)

var (
	// ErrUnauthorized is returned when the session is not signed in and no
	// authenticator was supplied
	ErrUnauthorized = errors.New("telegram session is not authorized")
	// ErrUnresolvable is returned when a chat query names nothing reachable
	ErrUnresolvable = errors.New("could not resolve chat")
)

// notFoundErrors are RPC error types meaning the queried entity does not
// exist or is not visible to this account
var notFoundErrors = []string{
	"USERNAME_NOT_OCCUPIED",
	"USERNAME_INVALID",
	"INVITE_HASH_INVALID",
	"INVITE_HASH_EXPIRED",
	"PEER_ID_INVALID",
	"CHANNEL_PRIVATE",
	"CHANNEL_INVALID",
	"CHAT_ID_INVALID",
}

// mapError classifies a gotd error once, at the transport boundary. The
// original error stays in the chain so tgerr helpers keep working.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if wait, ok := tgerr.AsFloodWait(err); ok {
		return errs.RateLimited(wait, err)
	}

	rpcErr, ok := tgerr.As(err)
	if !ok {
		return errs.Wrap(errs.ErrorTypeNetwork, "telegram request failed", err)
	}

	switch {
	case rpcErr.IsOneOf(notFoundErrors...):
		return &errs.Error{Type: errs.ErrorTypeNotFound, Message: rpcErr.Type, Code: rpcErr.Code, Err: err}
	case rpcErr.Code == 401:
		return &errs.Error{Type: errs.ErrorTypeAuth, Message: rpcErr.Type, Code: rpcErr.Code, Err: err}
	case rpcErr.Code >= 400 && rpcErr.Code < 500:
		return &errs.Error{Type: errs.ErrorTypeInvalidInput, Message: rpcErr.Type, Code: rpcErr.Code, Err: err}
	default:
		return &errs.Error{Type: errs.ErrorTypeNetwork, Message: rpcErr.Type, Code: rpcErr.Code, Err: err}
	}
}
