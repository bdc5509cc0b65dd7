package db

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// https://www.mongodb.com/docs/manual/reference/error-codes/
const (
	writeConflictCode      = 112
	transactionAbortedCode = 251
)

// DuplicateKeyError is returned when a ledger event with the same seq was
// already stored.
type DuplicateKeyError struct {
	Key     string
	Message string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Key)
}

type InvalidPaginationTokenError struct {
	Message string
}

func (e *InvalidPaginationTokenError) Error() string {
	return e.Message
}

type NotFoundError struct {
	Key     string
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// VersionConflictError is returned when the stored ledger version is not
// the one the writer started from.
type VersionConflictError struct {
	Expected uint64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("ledger state version %d was already replaced", e.Expected)
}

func is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

func IsDuplicateKeyError(err error) bool { return is[*DuplicateKeyError](err) }

func IsInvalidPaginationTokenError(err error) bool { return is[*InvalidPaginationTokenError](err) }

func IsNotFoundError(err error) bool { return is[*NotFoundError](err) }

func IsVersionConflictError(err error) bool { return is[*VersionConflictError](err) }

func IsWriteConflictError(err error) bool {
	return hasCommandErrorCode(err, writeConflictCode)
}

func IsTransactionAbortedError(err error) bool {
	return hasCommandErrorCode(err, transactionAbortedCode)
}

// hasCommandErrorCode accepts the driver's CommandError by value or pointer
// anywhere in the chain.
func hasCommandErrorCode(err error, code int32) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == code
	}
	var cmdErrPtr *mongo.CommandError
	if errors.As(err, &cmdErrPtr) && cmdErrPtr != nil {
		return cmdErrPtr.Code == code
	}
	return false
}
