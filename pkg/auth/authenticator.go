package auth

// Authenticator answers whether a login/passcode pair is allowed to connect.
// The method set matches github.com/go-stomp/stomp/v3/server.Authenticator, so any
// implementation can be plugged into the broker as is.
type Authenticator interface {
	Authenticate(login, passcode string) bool
}

// AuthenticatorFunc adapts a plain function to the Authenticator interface.
type AuthenticatorFunc func(login, passcode string) bool

func (f AuthenticatorFunc) Authenticate(login, passcode string) bool {
	return f(login, passcode)
}
