package utils

import "fmt"

// Taksonomi error domain. Setiap tipe membawa pesan yang aman
// ditampilkan ke UI pemanggil.

// ConflictError -> kalah race atas invariant uniqueness/occupancy
// (meja diklaim dua kali, dsb). Caller diharapkan retry dengan data segar.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func Conflictf(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// PreconditionError -> operasi tidak sah pada state saat ini
// (hapus meja yang occupied, remove item yang sudah preparing).
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string { return e.Message }

func Preconditionf(format string, args ...interface{}) error {
	return &PreconditionError{Message: fmt.Sprintf(format, args...)}
}

// LimitExceededError -> quantity cap terlampaui; ditampilkan ke customer,
// bukan di-clamp diam-diam.
type LimitExceededError struct {
	Message string
}

func (e *LimitExceededError) Error() string { return e.Message }

func LimitExceededf(format string, args ...interface{}) error {
	return &LimitExceededError{Message: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError -> lompatan status yang tidak diizinkan state
// machine (skip tahap atau mundur).
type InvalidTransitionError struct {
	Message string
}

func (e *InvalidTransitionError) Error() string { return e.Message }

func InvalidTransitionf(format string, args ...interface{}) error {
	return &InvalidTransitionError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError -> referensi menggantung.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func NotFoundf(format string, args ...interface{}) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}
