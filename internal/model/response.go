package model

const (
	StatusFailure = 0
	StatusSuccess = 1
)

type APIResponse struct {
	Success      int    `json:"success"`
	Result       any    `json:"result,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ObservationResponse is the envelope of both observation endpoints. User
// echoes the caller the token was issued to.
type ObservationResponse struct {
	Success      int       `json:"success"`
	User         *Identity `json:"user,omitempty"`
	Freq         string    `json:"freq"`
	Varname      string    `json:"varname"`
	Count        *int      `json:"count,omitempty"`
	Result       any       `json:"result,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

type EchoRow struct {
	Col1 string `json:"col1"`
}
