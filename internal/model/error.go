package model

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error codes returned in ErrorResponse.Code
const (
	CodePasswordTooShort   = "PASSWORD_TOO_SHORT"
	CodeHandleTaken        = "HANDLE_TAKEN"
	CodeBadCredentials     = "BAD_CREDENTIALS"
	CodeNotLoggedIn        = "NOT_LOGGED_IN"
	CodeDBWriteFailed      = "DB_WRITE_FAILED"
	CodeTransactionFailed  = "TRANSACTION_FAILED"
	CodeTransactionInvalid = "TRANSACTION_INVALID"
	CodeRLPEncodingError   = "RLP_ENCODING_ERROR"
	CodeRawTransaction     = "RAW_TRANSACTION_ERROR"
	CodeInvalidRequest     = "INVALID_REQUEST"
)
