package apperr

var (
	ErrUserNotFound      = New(KindNotFound, "User not found")
	ErrMessageNotFound   = New(KindNotFound, "Message not found or already deleted")
	ErrUsernameTaken     = New(KindConflict, "Username is already taken")
	ErrEmailTaken        = New(KindConflict, "User already exists with this email")
	ErrCodeExpired       = New(KindValidation, "Verification code has expired. Please sign up again to get a new code.")
	ErrInvalidCode       = New(KindValidation, "Incorrect verification code")
	ErrNotAuthenticated  = New(KindAuth, "Not authenticated")
	ErrInvalidToken      = New(KindAuth, "Invalid or expired token")
	ErrNoAccount         = New(KindAuth, "No user found with this username or email")
	ErrNotVerified       = New(KindAuth, "Please verify your account before signing in")
	ErrIncorrectPassword = New(KindAuth, "Incorrect password")
	ErrMessagesClosed    = New(KindGateClosed, "User is not accepting messages")
)
