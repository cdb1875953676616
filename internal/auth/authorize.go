package auth

import (
	"context"
	"errors"
)

// DenyReason categorizes an authorization denial.
type DenyReason int

const (
	// DenyUnauthenticated covers a missing, malformed, mis-signed or expired
	// credential. Sub-reasons are deliberately indistinguishable.
	DenyUnauthenticated DenyReason = iota + 1
	// DenyForbidden means the credential was valid but the role set does not
	// meet the policy.
	DenyForbidden
	// DenyInternal maps unexpected faults inside the authorization machinery.
	DenyInternal
)

func (r DenyReason) String() string {
	switch r {
	case DenyUnauthenticated:
		return "unauthenticated"
	case DenyForbidden:
		return "forbidden"
	case DenyInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
	Message string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason DenyReason, message string) Decision {
	return Decision{Reason: reason, Message: message}
}

// Guard evaluates policies against the bearer credential carried in the
// request context. It holds no mutable state and is safe for concurrent use.
type Guard struct {
	codec *Codec
}

// NewGuard wires the guard to the codec that verifies tokens.
func NewGuard(codec *Codec) (*Guard, error) {
	if codec == nil {
		return nil, errors.New("codec is required")
	}
	return &Guard{codec: codec}, nil
}

// Authorize decides whether the call carried by ctx may proceed under the
// given policy. Every step fails closed, and no fault escapes uncategorized:
// missing or invalid credentials deny as unauthenticated, an insufficient
// role set denies as forbidden with the policy's message, and anything
// unexpected denies as internal with a generic message.
func (g *Guard) Authorize(ctx context.Context, policy Policy) (d Decision) {
	defer func() {
		if rec := recover(); rec != nil {
			d = deny(DenyInternal, "authorization check failed")
		}
	}()

	if ctx == nil {
		return deny(DenyUnauthenticated, "authentication required")
	}
	token, ok := TokenFromContext(ctx)
	if !ok {
		return deny(DenyUnauthenticated, "authentication required")
	}

	claims, err := g.codec.Decode(token)
	if err != nil {
		return deny(DenyUnauthenticated, "invalid or expired token")
	}

	if !policy.Satisfied(claims.Roles) {
		return deny(DenyForbidden, policy.DenialMessage())
	}
	return allow()
}
