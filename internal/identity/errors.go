package identity

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies identity provider failures
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindEmailNotConfirmed
	KindInvalidCredentials
	KindInvalidEmail
	KindUserAlreadyExists
	KindWeakPassword
	KindRateLimited
	KindSessionExpired
	KindUnavailable
)

var kindNames = map[ErrorKind]string{
	KindUnknown:            "unknown",
	KindEmailNotConfirmed:  "email_not_confirmed",
	KindInvalidCredentials: "invalid_credentials",
	KindInvalidEmail:       "invalid_email",
	KindUserAlreadyExists:  "user_already_exists",
	KindWeakPassword:       "weak_password",
	KindRateLimited:        "rate_limited",
	KindSessionExpired:     "session_expired",
	KindUnavailable:        "unavailable",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// HTTPStatus is the status the API answers with for an identity failure of this kind
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindEmailNotConfirmed:
		return http.StatusForbidden
	case KindInvalidCredentials, KindSessionExpired:
		return http.StatusUnauthorized
	case KindInvalidEmail, KindWeakPassword:
		return http.StatusBadRequest
	case KindUserAlreadyExists:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

var userMessages = map[ErrorKind]string{
	KindEmailNotConfirmed:  "Deine E-Mail-Adresse wurde noch nicht bestätigt. Bitte überprüfe deinen Posteingang.",
	KindInvalidCredentials: "Ungültige Anmeldedaten. Bitte überprüfe deine E-Mail-Adresse und dein Passwort.",
	KindInvalidEmail:       "Ungültige E-Mail-Adresse.",
	KindUserAlreadyExists:  "Diese E-Mail-Adresse ist bereits registriert.",
	KindWeakPassword:       "Das Passwort ist zu schwach. Bitte wähle ein Passwort mit mindestens 6 Zeichen.",
	KindRateLimited:        "Zu viele Versuche. Bitte warte einen Moment und versuche es erneut.",
	KindSessionExpired:     "Deine Sitzung ist abgelaufen. Bitte melde dich erneut an.",
	KindUnavailable:        "Der Anmeldedienst ist derzeit nicht erreichbar. Bitte versuche es später erneut.",
}

// UserMessage returns the localized message shown to users for an error kind
func UserMessage(kind ErrorKind) string {
	if msg, ok := userMessages[kind]; ok {
		return msg
	}
	return "Ein unerwarteter Fehler ist aufgetreten. Bitte versuche es später erneut."
}

// Error is returned by every Client operation that fails
type Error struct {
	Op     string
	Kind   ErrorKind
	Status int
	// Code is the provider's machine-readable error code, if any
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("identity %s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Message != "":
		return fmt.Sprintf("identity %s: %s (status %d): %s", e.Op, e.Kind, e.Status, e.Message)
	default:
		return fmt.Sprintf("identity %s: %s (status %d)", e.Op, e.Kind, e.Status)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the kind from an identity error, KindUnknown otherwise
func KindOf(err error) ErrorKind {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return KindUnknown
}

// errorCodeKinds maps GoTrue error_code values
var errorCodeKinds = map[string]ErrorKind{
	"email_not_confirmed":        KindEmailNotConfirmed,
	"invalid_credentials":        KindInvalidCredentials,
	"email_address_invalid":      KindInvalidEmail,
	"validation_failed":          KindInvalidEmail,
	"user_already_exists":        KindUserAlreadyExists,
	"email_exists":               KindUserAlreadyExists,
	"weak_password":              KindWeakPassword,
	"over_request_rate_limit":    KindRateLimited,
	"over_email_send_rate_limit": KindRateLimited,
	"over_sms_send_rate_limit":   KindRateLimited,
	"session_expired":            KindSessionExpired,
	"session_not_found":          KindSessionExpired,
	"refresh_token_not_found":    KindSessionExpired,
	"refresh_token_already_used": KindSessionExpired,
	"bad_jwt":                    KindSessionExpired,
	"no_authorization":           KindSessionExpired,
	"user_not_found":             KindSessionExpired,
}

// classify derives a kind from the provider's error code, the legacy OAuth error
// field and the HTTP status, in that order
func classify(op string, status int, code, oauthError string) ErrorKind {
	if kind, ok := errorCodeKinds[code]; ok {
		return kind
	}

	switch oauthError {
	case "invalid_grant":
		if op == opRefresh {
			return KindSessionExpired
		}
		return KindInvalidCredentials
	case "unauthorized_client", "invalid_token":
		return KindSessionExpired
	}

	switch {
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= http.StatusInternalServerError:
		return KindUnavailable
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		if op == opSignIn {
			return KindInvalidCredentials
		}
		return KindSessionExpired
	}
	return KindUnknown
}
