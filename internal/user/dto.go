package user

// CreateUserDTO is the transport shape for POST /users. user_id is minted
// server-side; a caller-supplied value is ignored.
type CreateUserDTO struct {
	ClientID  string `json:"client_id"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	Password  string `json:"user_password"`
	Admin     bool   `json:"user_admin"`
}

// UpdateUserDTO is the transport shape for PUT /users/{user}. Pointer
// fields distinguish an absent key from an empty value: password rotation
// triggers only on a present, non-empty new_password key.
type UpdateUserDTO struct {
	UserEmail   *string `json:"user_email"`
	OldPassword *string `json:"old_password"`
	NewPassword *string `json:"new_password"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// Validate checks required fields and returns a ValidationError on failure.
func (d CreateUserDTO) Validate() error {
	if d.UserName == "" {
		return ValidationError{Msg: "user_name is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "user_password is required"}
	}
	return nil
}

func (d UpdateUserDTO) wantsPasswordChange() bool {
	return d.NewPassword != nil && *d.NewPassword != ""
}
