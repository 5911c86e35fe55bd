package inbound

type OtpSendRequest struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"displayName"`
}

type OtpVerifyRequest struct {
	Identity string `json:"identity"`
	Code     string `json:"code"`
}

// OtpResponse is the storefront client's wire contract: a bare success flag
// plus an error string, with no outer envelope.
type OtpResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type OtpDebugResponse struct {
	Success bool            `json:"success"`
	Count   int             `json:"count"`
	Otps    []OtpDebugEntry `json:"otps"`
}

type OtpDebugEntry struct {
	Identity     string `json:"identity"`
	IssuedAt     int64  `json:"issued_at"`
	Attempts     int    `json:"attempts"`
	AttemptsLeft int    `json:"attempts_left"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type RegisterResponse struct{}

func (RegisterResponse) Message() string {
	return "Registration successful. Please check your email for the verification code."
}

type RegisterResendRequest struct {
	Email string `json:"email"`
}

type RegisterResendResponse struct{}

func (RegisterResendResponse) Message() string {
	return "If an account with that email exists, we have sent a new verification code."
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

type ProfileResponse struct {
	ID       int64  `json:"id,string"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Status   string `json:"status"`
}
