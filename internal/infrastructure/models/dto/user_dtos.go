package dto

type SaveCredentialDTO struct {
	Email    string
	LCSToken string
}
