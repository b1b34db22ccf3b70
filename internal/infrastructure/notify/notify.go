// Package notify surfaces user-facing notifications. Each failed platform
// call produces exactly one notification; the class is derived from the error
// taxonomy and never exposes upstream internals.
package notify

// Class identifies the notification variant shown to the user.
type Class string

const (
	ClassNetworkError    Class = "network_error"
	ClassSessionExpired  Class = "session_expired"
	ClassValidationError Class = "validation_error"
	ClassRequestError    Class = "request_error"
	ClassServerError     Class = "server_error"
	ClassSuccess         Class = "success"
	ClassInfo            Class = "info"
)

// Titles shown for each class.
const (
	TitleNetworkError   = "Network Error"
	TitleSessionExpired = "Session Expired"
	TitleServerError    = "Server Error"
)

// Notifier receives user-facing notifications.
type Notifier interface {
	Notify(class Class, title, message string)
}

// Func adapts a function to the Notifier interface.
type Func func(class Class, title, message string)

// Notify implements Notifier.
func (f Func) Notify(class Class, title, message string) {
	f(class, title, message)
}

// Nop returns a notifier that discards everything.
func Nop() Notifier {
	return Func(func(Class, string, string) {})
}
