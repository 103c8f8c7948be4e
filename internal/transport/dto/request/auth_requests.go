package request

type TokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	LCSToken string `json:"lcs_token" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}
