package apperr

import (
	"errors"
	"fmt"
)

// エラーの種類。errors.Isで判定する
var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 409
	ErrDatabase   = errors.New("database")   // 500
)

// Errorは種類とメッセージを持つエラー。
// Msgはそのままクライアントに返してよい文言。
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

// Databaseは原因のエラーを包む。メッセージは外に出さない
func Database(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrDatabase, Msg: "db error", Err: err}
}

// Messageはクライアント向けの文言を返す
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal error"
}
