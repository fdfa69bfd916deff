package store

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageFailure matches every error raised by the underlying medium
	// (driver errors, quota, aborted commits).
	ErrStorageFailure = errors.New("storage failure")

	ErrNotFound          = errors.New("record not found")
	ErrUnindexedField    = errors.New("field is not indexed")
	ErrOutOfScope        = errors.New("collection is outside the transaction scope")
	ErrInvalidRecord     = errors.New("invalid record")
	ErrDanglingReference = errors.New("dangling reference")
)

// Error 包装底层存储介质返回的错误，errors.Is(err, ErrStorageFailure) 为真。
type Error struct {
	Op         string
	Collection string
	Err        error
}

func (e *Error) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrStorageFailure }

func failure(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	// 越界访问是调用方的编程错误，不归为介质故障
	var se *Error
	if errors.As(err, &se) || errors.Is(err, ErrOutOfScope) {
		return err
	}
	return &Error{Op: op, Collection: collection, Err: err}
}

// IsStorageFailure reports whether err was raised by the storage medium.
func IsStorageFailure(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}
