package inventory

import (
	"errors"
	"fmt"
)

// Ошибки движка. Всё, что не попало в эти типы, заворачивается в StoreError.

type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

type NotFoundError struct{ Msg string }

func (e *NotFoundError) Error() string { return e.Msg }

type InsufficientStockError struct {
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("недостаточно материалов на складе: остаток %d, запрошено %d", e.Available, e.Requested)
}

type ConflictError struct{ Msg string }

func (e *ConflictError) Error() string { return e.Msg }

type StoreError struct{ Err error }

func (e *StoreError) Error() string { return "ошибка хранилища: " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }

// classify оставляет доменные ошибки как есть, остальные считает ошибками хранилища.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var (
		ve *ValidationError
		nf *NotFoundError
		is *InsufficientStockError
		ce *ConflictError
		se *StoreError
	)
	if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &is) || errors.As(err, &ce) || errors.As(err, &se) {
		return err
	}
	return &StoreError{Err: err}
}
