package identity

import "github.com/jhedenpat/kapekiosk-v1-0/internal/models"

// Input is anything Next accepts: guest actions and provider answers.
type Input interface {
	identityInput()
}

type (
	// Back returns to the previous stage, clearing that stage's field.
	Back struct{}

	ChooseGuest  struct{}
	ChooseMember struct{}

	SetGuestName struct{ Value string }
	Continue     struct{}

	SetPhone struct{ Value string }
	SendCode struct{}

	SetCode struct{ Value string }
	Verify  struct{}

	SetDisplayName struct{ Value string }
	CreateAccount  struct{}
)

type (
	// CodeSent answers a SendCodeRequest.
	CodeSent struct{}

	// Verified answers a VerifyRequest.
	Verified struct{ Verification Verification }

	// Registered answers a RegisterRequest.
	Registered struct{ Member *models.Member }

	// Rejected answers any request the provider refused.
	Rejected struct{ Reason string }
)

func (Back) identityInput()           {}
func (ChooseGuest) identityInput()    {}
func (ChooseMember) identityInput()   {}
func (SetGuestName) identityInput()   {}
func (Continue) identityInput()       {}
func (SetPhone) identityInput()       {}
func (SendCode) identityInput()       {}
func (SetCode) identityInput()        {}
func (Verify) identityInput()         {}
func (SetDisplayName) identityInput() {}
func (CreateAccount) identityInput()  {}
func (CodeSent) identityInput()       {}
func (Verified) identityInput()       {}
func (Registered) identityInput()     {}
func (Rejected) identityInput()       {}

// Request is work Next needs a Provider to do.
type Request interface {
	identityRequest()
}

type (
	SendCodeRequest struct{ Phone string }
	VerifyRequest   struct{ Phone, Code string }
	RegisterRequest struct{ Phone, DisplayName string }
)

func (SendCodeRequest) identityRequest() {}
func (VerifyRequest) identityRequest()   {}
func (RegisterRequest) identityRequest() {}
