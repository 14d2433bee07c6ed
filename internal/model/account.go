package model

import "encoding/json"

// RegisterRequest represents request for POST /account/register
type RegisterRequest struct {
	Handle    string `json:"handle" binding:"required"`
	Password  string `json:"password" binding:"required"`
	DoNotFund bool   `json:"doNotFund"`
	Persist   bool   `json:"persist"`
}

// LoginRequest represents request for POST /account/login
type LoginRequest struct {
	Handle   string `json:"handle" binding:"required"`
	Password string `json:"password" binding:"required"`
	Persist  bool   `json:"persist"`
}

// ImportRequest represents request for POST /account/import.
// When Handle is set the key is stored under it and the session is logged in.
type ImportRequest struct {
	Handle   string          `json:"handle"`
	Password string          `json:"password" binding:"required"`
	Keystore json.RawMessage `json:"keystore" binding:"required"`
}

// AccountResponse represents the active account returned to callers
type AccountResponse struct {
	Handle  string `json:"handle,omitempty"`
	Address string `json:"address"`
	QR      string `json:"QR,omitempty"`
}

// LogoutResponse represents response for POST /account/logout
type LogoutResponse struct {
	Success bool `json:"success"`
}
