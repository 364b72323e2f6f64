package domain

type Account struct {
	ID           int64
	UID          string
	Email        string
	PasswordHash string
}

type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token   string   `json:"token"`
	UID     string   `json:"uid"`
	Profile *Profile `json:"profile,omitempty"`
}
