package domain

import (
	"errors"
	"fmt"
)

// Kind 错误分类（封闭集合）
type Kind string

const (
	KindNotAuthenticated   Kind = "not_authenticated"
	KindPermissionDenied   Kind = "permission_denied"
	KindNotFound           Kind = "not_found"
	KindDuplicateUsername  Kind = "duplicate_username"
	KindDuplicateItem      Kind = "duplicate_item"
	KindAlreadyInWatchlist Kind = "already_in_watchlist"
	KindValidation         Kind = "validation_error"
	KindProtectedAccount   Kind = "protected_account"
	KindSelfShare          Kind = "self_share"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindInternal           Kind = "internal"
)

// Error is the only error type that crosses the store boundary.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(k Kind, format string, args ...any) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

func NotAuthenticated() error {
	return &Error{Kind: KindNotAuthenticated, Msg: "user is not logged in"}
}
func PermissionDenied(format string, args ...any) error {
	return newErr(KindPermissionDenied, format, args...)
}
func NotFound(format string, args ...any) error   { return newErr(KindNotFound, format, args...) }
func Validation(format string, args ...any) error { return newErr(KindValidation, format, args...) }
func DuplicateItem(format string, args ...any) error {
	return newErr(KindDuplicateItem, format, args...)
}
func DuplicateUsername(username string) error {
	return newErr(KindDuplicateUsername, "username %q is already in use", username)
}
func AlreadyInWatchlist() error {
	return &Error{Kind: KindAlreadyInWatchlist, Msg: "this item is already in your watchlist"}
}
func ProtectedAccount() error {
	return &Error{Kind: KindProtectedAccount, Msg: "predefined accounts cannot be deleted"}
}
func SelfShare() error { return &Error{Kind: KindSelfShare, Msg: "cannot share a list with yourself"} }
func InvalidCredentials(msg string) error {
	if msg == "" {
		msg = "invalid username or password"
	}
	return &Error{Kind: KindInvalidCredentials, Msg: msg}
}
func Internal(msg string, err error) error { return &Error{Kind: KindInternal, Msg: msg, Err: err} }

// KindOf 非 *Error 的错误一律视为 internal
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func IsKind(err error, k Kind) bool { return err != nil && KindOf(err) == k }
