// Package payment implements the kiosk's prepayment protocol.
//
//	Input --submit--> Processing --charged--> Success --(display delay)--> done
//	                       |
//	                       +--declined--> Failed --retry--> Input
//
// Next is pure. Timing (the processing charge and the success display
// delay) is driven by the caller; see workflow.Machine.
package payment

import (
	"errors"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/money"
)

// PayerLength is the number of digits a payer mobile number needs.
const PayerLength = 11

// Stage is one step of the payment protocol.
type Stage string

const (
	StageInput      Stage = "input"
	StageProcessing Stage = "processing"
	StageSuccess    Stage = "success"
	StageFailed     Stage = "failed"
)

var (
	// ErrActionDisabled is returned for an action whose gate is closed.
	ErrActionDisabled = errors.New("payment action is not enabled")

	// ErrUnexpectedInput is returned for an input the current stage does
	// not accept.
	ErrUnexpectedInput = errors.New("input not accepted at this payment stage")
)

// State is the payment sub-state held on the Payment step.
type State struct {
	Stage Stage `json:"stage"`

	// Payer is the digits-only mobile number.
	Payer string `json:"payer,omitempty"`

	// Amount is what will be charged.
	Amount money.Amount `json:"amount"`

	// Attempt counts submissions. Answers from an earlier attempt are stale.
	Attempt int `json:"attempt"`

	// Receipt is set once the charge succeeds.
	Receipt *Receipt `json:"receipt,omitempty"`

	// Err is the last decline reason.
	Err string `json:"error,omitempty"`
}

// Start returns the input stage for amount.
func Start(amount money.Amount) State {
	return State{Stage: StageInput, Amount: amount}
}

// CanSubmit reports whether "Pay" is enabled.
func (s State) CanSubmit() bool {
	return s.Stage == StageInput && len(s.Payer) >= PayerLength
}

// CanGoBack reports whether the guest may leave the payment step. Once a
// charge has started it runs to completion.
func (s State) CanGoBack() bool {
	return s.Stage == StageInput
}

// CanRetry reports whether a failed payment can be re-entered.
func (s State) CanRetry() bool {
	return s.Stage == StageFailed
}

// Paid reports whether a receipt has been issued.
func (s State) Paid() bool {
	return s.Stage == StageSuccess && s.Receipt != nil
}

// Input is an event for Next.
type Input interface {
	paymentInput()
}

type (
	// SetPayer replaces the payer field. Non-digits are dropped and the
	// value is truncated to PayerLength.
	SetPayer struct{ Value string }

	// Submit starts the charge.
	Submit struct{}

	// Retry returns from Failed to Input.
	Retry struct{}

	// Charged reports a successful charge for Attempt.
	Charged struct {
		Attempt int
		Receipt Receipt
	}

	// Declined reports a failed charge for Attempt.
	Declined struct {
		Attempt int
		Reason  string
	}
)

func (SetPayer) paymentInput() {}
func (Submit) paymentInput()   {}
func (Retry) paymentInput()    {}
func (Charged) paymentInput()  {}
func (Declined) paymentInput() {}

// Next applies in to s. When it moves to Processing, the caller must issue
// a charge for Request(s) and feed the answer back tagged with s.Attempt.
func Next(s State, in Input) (State, error) {
	next := s
	switch in := in.(type) {
	case SetPayer:
		if s.Stage != StageInput {
			return s, ErrUnexpectedInput
		}
		next.Payer = digits(in.Value, PayerLength)
		next.Err = ""
		return next, nil

	case Submit:
		if !s.CanSubmit() {
			return s, ErrActionDisabled
		}
		next.Stage = StageProcessing
		next.Attempt++
		next.Err = ""
		return next, nil

	case Charged:
		if s.Stage != StageProcessing || in.Attempt != s.Attempt {
			return s, ErrUnexpectedInput
		}
		receipt := in.Receipt
		next.Stage = StageSuccess
		next.Receipt = &receipt
		return next, nil

	case Declined:
		if s.Stage != StageProcessing || in.Attempt != s.Attempt {
			return s, ErrUnexpectedInput
		}
		next.Stage = StageFailed
		next.Err = in.Reason
		if next.Err == "" {
			next.Err = ErrDeclined.Error()
		}
		return next, nil

	case Retry:
		if !s.CanRetry() {
			return s, ErrActionDisabled
		}
		next.Stage = StageInput
		return next, nil
	}
	return s, ErrUnexpectedInput
}

// RequestFor builds the charge request for a state entering Processing.
func RequestFor(s State) Request {
	return Request{Payer: s.Payer, Amount: s.Amount}
}

func digits(v string, max int) string {
	out := make([]byte, 0, max)
	for i := 0; i < len(v) && len(out) < max; i++ {
		if v[i] >= '0' && v[i] <= '9' {
			out = append(out, v[i])
		}
	}
	return string(out)
}
