package commands

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type VerifyEmail struct {
	Token string
}

type VerifiedEmail struct {
	UserID          string
	Email           string
	AlreadyVerified bool
}

type VerifyEmailPorts struct {
	FindVerification FindVerificationFunc
	IsVerified       IsVerifiedFunc
	MarkVerified     MarkVerifiedFunc
	TTL              time.Duration // <= 0: sin expiración
	Now              func() time.Time
}

// ConfirmEmail marca el email como verificado. Repetir con el mismo token es
// idempotente mientras no haya expirado.
func ConfirmEmail(ctx context.Context, cmd VerifyEmail, p VerifyEmailPorts) (VerifiedEmail, error) {
	token := strings.TrimSpace(cmd.Token)
	if token == "" {
		return VerifiedEmail{}, ErrTokenInvalid
	}

	v, err := p.FindVerification(ctx, token)
	if err != nil && !absent(err) {
		return VerifiedEmail{}, fmt.Errorf("verify email: find: %w", err)
	}
	if err != nil || v == nil {
		return VerifiedEmail{}, fmt.Errorf("%w: verification token", ErrNotFound)
	}

	now := nowOr(p.Now)
	if p.TTL > 0 && now.Sub(v.IssuedAt) > p.TTL {
		return VerifiedEmail{}, ErrTokenExpired
	}

	out := VerifiedEmail{UserID: v.UserID, Email: v.Email}
	verified, err := p.IsVerified(ctx, v.UserID)
	if err != nil {
		if absent(err) {
			return VerifiedEmail{}, fmt.Errorf("%w: user %s", ErrNotFound, v.UserID)
		}
		return VerifiedEmail{}, fmt.Errorf("verify email: status: %w", err)
	}
	if verified {
		out.AlreadyVerified = true
		return out, nil
	}
	if err := p.MarkVerified(ctx, *v, now); err != nil {
		return VerifiedEmail{}, fmt.Errorf("verify email: mark: %w", err)
	}
	return out, nil
}
