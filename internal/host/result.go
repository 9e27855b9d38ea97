package host

// Status values carried in every response.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is one response message.  Exactly one Result is written per one-shot
// run, and per request in the loop.
type Result interface {
	// OK reports whether the result is a success.
	OK() bool
}

// UsernameResult reports the operating system user.
type UsernameResult struct {
	Status   string `json:"status"`
	Username string `json:"username"`
}

// CategoryResult reports the category of a URL.
type CategoryResult struct {
	Status   string `json:"status"`
	Category string `json:"category"`
}

// FailureResult reports why an action failed.
type FailureResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SuccessUsername returns {"status":"success","username":name}.
func SuccessUsername(name string) UsernameResult {
	return UsernameResult{Status: StatusSuccess, Username: name}
}

// SuccessCategory returns {"status":"success","category":category}.
func SuccessCategory(category string) CategoryResult {
	return CategoryResult{Status: StatusSuccess, Category: category}
}

// Failure returns {"status":"error","message":...} describing err.  The
// message is never empty.
func Failure(err error) FailureResult {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = "unknown error"
	}
	return FailureResult{Status: StatusError, Message: msg}
}

func (UsernameResult) OK() bool { return true }
func (CategoryResult) OK() bool { return true }
func (FailureResult) OK() bool  { return false }
