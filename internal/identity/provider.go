package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
)

var (
	ErrCodeRejected    = errors.New("verification code is incorrect")
	ErrCodeExpired     = errors.New("verification code has expired")
	ErrNoCodeIssued    = errors.New("no verification code was sent to this number")
	ErrTooManyAttempts = errors.New("too many incorrect attempts")
	ErrMemberExists    = errors.New("an account already exists for this number")
)

// Verification is the outcome of a successful code check.
type Verification struct {
	Phone string

	// Member is the existing account for Phone, or nil if none is known.
	Member *models.Member
}

// Provider performs the member path's outside work. All rejection policy
// lives behind this interface; the state machine only enforces input shape.
type Provider interface {
	// SendCode dispatches a one-time code to phone.
	SendCode(ctx context.Context, phone string) error

	// Verify checks code for phone.
	Verify(ctx context.Context, phone, code string) (Verification, error)

	// Register creates an account for phone.
	Register(ctx context.Context, phone, displayName string) (*models.Member, error)
}

// Simulated accepts everything and knows no members.
type Simulated struct{}

var _ Provider = Simulated{}

func (Simulated) SendCode(ctx context.Context, phone string) error {
	slog.Debug("Simulated OTP dispatch", "phone", mask(phone))
	return nil
}

func (Simulated) Verify(ctx context.Context, phone, code string) (Verification, error) {
	return Verification{Phone: phone}, nil
}

func (Simulated) Register(ctx context.Context, phone, displayName string) (*models.Member, error) {
	return &models.Member{
		ID:          uuid.New().String(),
		Phone:       phone,
		DisplayName: displayName,
		CreatedAt:   time.Now().Unix(),
	}, nil
}

// Flow runs Next and resolves its requests against a Provider.
type Flow struct {
	provider Provider
	opts     Options
}

// NewFlow creates a Flow.
func NewFlow(provider Provider, opts Options) *Flow {
	if provider == nil {
		provider = Simulated{}
	}
	return &Flow{provider: provider, opts: opts}
}

// Options returns the flow's configuration.
func (f *Flow) Options() Options {
	return f.opts
}

// Handle applies in to s. Provider rejections are reported in State.Err,
// not as errors; the returned error is only for shape or stage violations
// and for provider failures that are not rejections (e.g. a cancelled ctx).
func (f *Flow) Handle(ctx context.Context, s State, in Input) (State, error) {
	next, req, err := Next(s, in, f.opts)
	if err != nil || req == nil {
		return next, err
	}

	answer, err := f.Execute(ctx, req)
	if err != nil {
		return s, err
	}

	resolved, _, err := Next(next, answer, f.opts)
	if err != nil {
		return s, fmt.Errorf("apply provider answer: %w", err)
	}
	return resolved, nil
}

// Execute performs req against the provider and returns the input that
// answers it. Known rejections come back as Rejected.
func (f *Flow) Execute(ctx context.Context, req Request) (Input, error) {
	switch r := req.(type) {
	case SendCodeRequest:
		if err := f.provider.SendCode(ctx, r.Phone); err != nil {
			return rejection(err)
		}
		return CodeSent{}, nil

	case VerifyRequest:
		v, err := f.provider.Verify(ctx, r.Phone, r.Code)
		if err != nil {
			return rejection(err)
		}
		return Verified{Verification: v}, nil

	case RegisterRequest:
		m, err := f.provider.Register(ctx, r.Phone, r.DisplayName)
		if err != nil {
			return rejection(err)
		}
		return Registered{Member: m}, nil
	}
	return nil, fmt.Errorf("unknown identity request %T", req)
}

// rejection turns known provider refusals into a Rejected input and passes
// anything else through as an error.
func rejection(err error) (Input, error) {
	switch {
	case errors.Is(err, ErrCodeRejected),
		errors.Is(err, ErrCodeExpired),
		errors.Is(err, ErrNoCodeIssued),
		errors.Is(err, ErrTooManyAttempts),
		errors.Is(err, ErrMemberExists):
		return Rejected{Reason: err.Error()}, nil
	}
	return nil, err
}

func mask(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return "*******" + phone[len(phone)-4:]
}
