// Package identity resolves the guest's display name, either from a typed
// guest name or through member phone verification and signup.
//
// The sub-flow is a small state machine:
//
//	Choose ─┬─ guest ──► GuestName ──► Resolved
//	        └─ member ─► MemberPhone ─► MemberOTP ─► MemberSignup ──► Resolved
//
// Next is a pure transition function. Anything that needs an outside answer
// (sending a code, checking it, creating an account) is returned as a Request;
// Flow executes requests against a Provider and feeds the answer back in.
package identity

import (
	"errors"
	"strings"
)

// Stage names a state of the sub-flow.
type Stage string

const (
	StageChoose       Stage = "choose"
	StageGuestName    Stage = "guest_name"
	StageMemberPhone  Stage = "member_phone"
	StageMemberOTP    Stage = "member_otp"
	StageMemberSignup Stage = "member_signup"
	StageResolved     Stage = "resolved"
)

const (
	// PhoneLength is the digit count of a local mobile number.
	PhoneLength = 11

	// CodeMaxLength is where typed codes are truncated.
	CodeMaxLength = 6

	// CodeMinLength is the shortest code that may be submitted.
	CodeMinLength = 4
)

var (
	// ErrActionDisabled is returned when an action's gate is closed
	// (empty name, short phone, short code).
	ErrActionDisabled = errors.New("action not enabled for current input")

	// ErrUnexpectedInput is returned when an input does not apply to the stage.
	ErrUnexpectedInput = errors.New("input not valid at this stage")

	// ErrMemberLoginDisabled is returned when the member path is switched off.
	ErrMemberLoginDisabled = errors.New("member login is disabled")
)

// State is the sub-flow's current stage plus the fields that stage edits.
type State struct {
	Stage Stage `json:"stage"`

	// GuestName is the raw text in the guest name field.
	GuestName string `json:"guest_name,omitempty"`

	// Phone is the digits-only member mobile number.
	Phone string `json:"phone,omitempty"`

	// Code is the digits-only one-time code as typed.
	Code string `json:"code,omitempty"`

	// DisplayName is the raw text in the signup name field.
	DisplayName string `json:"display_name,omitempty"`

	// Resolved is the trimmed name emitted on completion.
	Resolved string `json:"resolved,omitempty"`

	// Err is the last provider rejection, cleared by the next input.
	Err string `json:"error,omitempty"`
}

// Start returns the initial state.
func Start() State {
	return State{Stage: StageChoose}
}

// Done reports whether a name has been resolved.
func (s State) Done() bool {
	return s.Stage == StageResolved && s.Resolved != ""
}

// CanContinue reports whether the guest "Continue" action is enabled.
func (s State) CanContinue() bool {
	return s.Stage == StageGuestName && strings.TrimSpace(s.GuestName) != ""
}

// CanSendCode reports whether "Send OTP" is enabled.
func (s State) CanSendCode() bool {
	return s.Stage == StageMemberPhone && len(s.Phone) >= PhoneLength
}

// CanVerify reports whether "Verify" is enabled.
func (s State) CanVerify() bool {
	return s.Stage == StageMemberOTP && len(s.Code) >= CodeMinLength
}

// CanCreateAccount reports whether "Create Account" is enabled.
func (s State) CanCreateAccount() bool {
	return s.Stage == StageMemberSignup && strings.TrimSpace(s.DisplayName) != ""
}

// SignupPolicy decides whether a verified phone must go through signup.
type SignupPolicy func(v Verification) bool

// AlwaysSignUp routes every verified phone to signup.
func AlwaysSignUp(Verification) bool { return true }

// SkipKnownMembers lets returning members bypass signup.
func SkipKnownMembers(v Verification) bool { return v.Member == nil }

// Options configures the sub-flow.
type Options struct {
	// MemberLogin enables the member path.
	MemberLogin bool

	// NeedsSignup is consulted after a successful verification.
	// Nil means AlwaysSignUp.
	NeedsSignup SignupPolicy
}

func (o Options) needsSignup(v Verification) bool {
	if o.NeedsSignup == nil {
		return AlwaysSignUp(v)
	}
	return o.NeedsSignup(v)
}

// Next applies one input and returns the new state. A non-nil Request must
// be answered by feeding its result back through Next. On error the returned
// state equals s.
func Next(s State, in Input, opts Options) (State, Request, error) {
	next := s
	next.Err = ""

	switch in := in.(type) {
	case Back:
		return back(next)

	case ChooseGuest:
		if s.Stage != StageChoose {
			return s, nil, ErrUnexpectedInput
		}
		next.Stage = StageGuestName
		return next, nil, nil

	case ChooseMember:
		if s.Stage != StageChoose {
			return s, nil, ErrUnexpectedInput
		}
		if !opts.MemberLogin {
			return s, nil, ErrMemberLoginDisabled
		}
		next.Stage = StageMemberPhone
		return next, nil, nil

	case SetGuestName:
		if s.Stage != StageGuestName {
			return s, nil, ErrUnexpectedInput
		}
		next.GuestName = in.Value
		return next, nil, nil

	case Continue:
		if !s.CanContinue() {
			return s, nil, ErrActionDisabled
		}
		return resolve(next, next.GuestName), nil, nil

	case SetPhone:
		if s.Stage != StageMemberPhone {
			return s, nil, ErrUnexpectedInput
		}
		next.Phone = digits(in.Value, PhoneLength)
		return next, nil, nil

	case SendCode:
		if !s.CanSendCode() {
			return s, nil, ErrActionDisabled
		}
		return next, SendCodeRequest{Phone: s.Phone}, nil

	case CodeSent:
		if s.Stage != StageMemberPhone {
			return s, nil, ErrUnexpectedInput
		}
		next.Stage = StageMemberOTP
		next.Code = ""
		return next, nil, nil

	case SetCode:
		if s.Stage != StageMemberOTP {
			return s, nil, ErrUnexpectedInput
		}
		next.Code = digits(in.Value, CodeMaxLength)
		return next, nil, nil

	case Verify:
		if !s.CanVerify() {
			return s, nil, ErrActionDisabled
		}
		return next, VerifyRequest{Phone: s.Phone, Code: s.Code}, nil

	case Verified:
		if s.Stage != StageMemberOTP {
			return s, nil, ErrUnexpectedInput
		}
		if !opts.needsSignup(in.Verification) && in.Verification.Member != nil {
			return resolve(next, in.Verification.Member.DisplayName), nil, nil
		}
		next.Stage = StageMemberSignup
		next.DisplayName = ""
		return next, nil, nil

	case SetDisplayName:
		if s.Stage != StageMemberSignup {
			return s, nil, ErrUnexpectedInput
		}
		next.DisplayName = in.Value
		return next, nil, nil

	case CreateAccount:
		if !s.CanCreateAccount() {
			return s, nil, ErrActionDisabled
		}
		return next, RegisterRequest{
			Phone:       s.Phone,
			DisplayName: strings.TrimSpace(s.DisplayName),
		}, nil

	case Registered:
		if s.Stage != StageMemberSignup {
			return s, nil, ErrUnexpectedInput
		}
		name := strings.TrimSpace(s.DisplayName)
		if in.Member != nil && strings.TrimSpace(in.Member.DisplayName) != "" {
			name = in.Member.DisplayName
		}
		return resolve(next, name), nil, nil

	case Rejected:
		// Whatever was submitted at this stage is cleared for re-entry.
		switch s.Stage {
		case StageMemberOTP:
			next.Code = ""
		case StageMemberPhone, StageMemberSignup:
		default:
			return s, nil, ErrUnexpectedInput
		}
		next.Err = in.Reason
		return next, nil, nil
	}

	return s, nil, ErrUnexpectedInput
}

func back(s State) (State, Request, error) {
	switch s.Stage {
	case StageGuestName:
		s.Stage = StageChoose
		s.GuestName = ""
	case StageMemberPhone:
		s.Stage = StageChoose
		s.Phone = ""
	case StageMemberOTP:
		s.Stage = StageMemberPhone
		s.Code = ""
	case StageMemberSignup:
		s.Stage = StageMemberOTP
		s.DisplayName = ""
	default:
		// Choose and Resolved are exited by the host workflow.
		return s, nil, ErrUnexpectedInput
	}
	return s, nil, nil
}

func resolve(s State, name string) State {
	name = strings.TrimSpace(name)
	if name == "" {
		return s
	}
	s.Stage = StageResolved
	s.Resolved = name
	return s
}

// digits keeps only ASCII digits, truncated to max.
func digits(v string, max int) string {
	var b strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			if b.Len() == max {
				break
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
