package models

// Member is a registered loyalty account keyed by mobile number.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string

	// Phone is the digits-only mobile number.
	Phone string

	// DisplayName is what the barista calls out.
	DisplayName string

	// CreatedAt is the Unix timestamp when the member signed up.
	CreatedAt int64
}
