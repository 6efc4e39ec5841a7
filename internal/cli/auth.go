package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/rolekeeper/internal/common"
	"github.com/dmitrijs2005/rolekeeper/internal/roles"
)

// getEmail and getPassword are indirections used to facilitate testing.
var getEmail = promptEmail
var getPassword = promptPassword

var errEmptyRole = errors.New("role must not be empty")

func (a *App) isSignedIn() bool {
	return a.session.State().SignedIn()
}

func (a *App) credentials() (string, []byte, error) {
	email, err := getEmail(a.reader, a.out, "Email")
	if err != nil {
		return "", nil, err
	}
	if email == "" {
		return "", nil, errEmptyEmail
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// Signup creates an account with email and password. The new user is signed
// in and gets the default role.
func (a *App) Signup(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ident, err := a.session.Signup(ctx, email, string(password))
	if err != nil {
		printlnFn("Signup failed:", err)
		return err
	}
	printlnFn("Account created for", ident.Email)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, email, string(password)); err != nil {
		printlnFn("Login failed:", err)
		return err
	}
	return nil
}

// Google runs the interactive Google sign-in.
func (a *App) Google(ctx context.Context) error {
	if err := a.session.LoginWithGoogle(ctx); err != nil {
		printlnFn("Google sign-in failed:", err)
		return err
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		printlnFn("Logout failed:", err)
		return err
	}
	return nil
}

// WhoAmI prints the current session.
func (a *App) WhoAmI(context.Context) error {
	st := a.session.State()
	switch {
	case !st.Ready:
		printlnFn("Session is still being resolved")
	case st.Err != nil:
		printlnFn("Session error:", st.Err)
	case st.User == nil:
		printlnFn("Not signed in")
	default:
		u := st.User
		printlnFn(fmt.Sprintf("uid=%s email=%s role=%s provider=%s", u.Identity.UID, u.Identity.Email, u.Role, u.Identity.ProviderID))
	}
	return nil
}

// SetRole writes role into the Role Record of uid; "me" means the current
// user. The signed-in view picks the change up on the next session change.
func (a *App) SetRole(ctx context.Context, uid, role string) error {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		printlnFn("Role update failed:", errEmptyRole)
		return errEmptyRole
	}
	if uid == "me" {
		u := a.session.State().User
		if u == nil {
			printlnFn("Not signed in")
			return common.ErrorUnauthorized
		}
		uid = u.Identity.UID
	}

	rec, err := a.roles.Get(ctx, uid)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		rec = roles.NewRecord(uid, "")
	case err != nil:
		a.logger.Error(ctx, "role lookup failed", "uid", uid, "error", err)
		printlnFn("Role update failed:", err)
		return err
	}
	rec.Role = role
	rec.UpdatedAt = time.Now().UTC()

	if err := a.roles.Set(ctx, rec); err != nil {
		a.logger.Error(ctx, "role update failed", "uid", uid, "error", err)
		printlnFn("Role update failed:", err)
		return err
	}
	a.logger.Info(ctx, "role updated", "uid", uid, "role", role)
	printlnFn(fmt.Sprintf("Role of %s set to %q; it applies from the next sign-in", uid, role))
	return nil
}
