package host

import (
	"errors"
	"os"
	"os/user"
	"strings"
)

// IdentityFunc looks up the name of the user running the host.
type IdentityFunc func() (string, error)

// loginEnv lists the variables holding the login name, in lookup order.
var loginEnv = []string{"LOGNAME", "USER", "USERNAME"}

// CurrentUsername returns the login name of the current user.  On Windows the
// "DOMAIN\" prefix is removed.
//
// The name comes from the session's login variables when set, so a host
// started under su or sudo still reports the user who logged in.  Otherwise
// it is the account of the effective uid, which is not always the
// controlling terminal's login that getlogin(3) reports.
func CurrentUsername() (string, error) {
	for _, k := range loginEnv {
		if name := strings.TrimSpace(os.Getenv(k)); name != "" {
			return trimDomain(name)
		}
	}
	u, err := user.Current()
	if err != nil {
		return "", &SystemCallError{Op: "user lookup", Err: err}
	}
	return trimDomain(u.Username)
}

func trimDomain(name string) (string, error) {
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "", &SystemCallError{Op: "user lookup", Err: errors.New("empty user name")}
	}
	return name, nil
}
