package toolkit

import (
	"errors"
	"net"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/rolekeeper/internal/identity"
)

var ErrMissingAPIKey = errors.New("identity toolkit: API key is required")

// apiError is the error envelope returned by the REST API.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

var messageCodes = map[string]string{
	"EMAIL_NOT_FOUND":             identity.CodeUserNotFound,
	"INVALID_PASSWORD":            identity.CodeWrongPassword,
	"INVALID_LOGIN_CREDENTIALS":   identity.CodeInvalidCredential,
	"INVALID_IDP_RESPONSE":        identity.CodeInvalidCredential,
	"EMAIL_EXISTS":                identity.CodeEmailAlreadyInUse,
	"WEAK_PASSWORD":               identity.CodeWeakPassword,
	"INVALID_EMAIL":               identity.CodeInvalidEmail,
	"MISSING_EMAIL":               identity.CodeInvalidEmail,
	"USER_DISABLED":               identity.CodeUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER": identity.CodeTooManyRequests,
	"OPERATION_NOT_ALLOWED":       identity.CodeOperationNotAllowed,
	"PASSWORD_LOGIN_DISABLED":     identity.CodeOperationNotAllowed,
}

// codeForMessage maps a platform message such as
// "WEAK_PASSWORD : Password should be at least 6 characters" to an
// identity code and the human-readable detail.
func codeForMessage(message string) (code, detail string) {
	name, detail, _ := strings.Cut(message, ":")
	name = strings.TrimSpace(name)
	detail = strings.TrimSpace(detail)
	if detail == "" {
		detail = name
	}
	if c, ok := messageCodes[name]; ok {
		return c, detail
	}
	return identity.CodeInternal, detail
}

// transportError classifies failures below the HTTP layer.
func transportError(err error) error {
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return identity.WrapError(identity.CodeNetworkFailed, err)
	}
	return identity.WrapError(identity.CodeInternal, err)
}
