// Package errs provides the unified error type used across all of tpchkit.
//
// Every subsystem (schema validation, referential graph, loaders, DDL
// appliers, …) wraps its failures into *errs.Error before returning them to
// callers. Callers use the Is* predicates to handle errors without importing
// subsystem-specific packages.
//
// Usage:
//
//	// In the referential graph — reject a dangling foreign key:
//	return errs.Dangling("lineitem", 7, int64(99999), "orders", "o_orderkey")
//
//	// In a caller — check the violation class:
//	if errs.IsDanglingRef(err) {
//	    log.Fatalf("bad input batch: %v", err)
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing subsystem-specific codes.
// Data-quality violations (attribute, uniqueness, dangling reference,
// out-of-order load) are deterministic: they require corrected input, never
// a retry. The remaining kinds cover infrastructure failures from the DDL
// and storage backends.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindAttribute                // value breaks its column's declared domain
	ErrKindUniqueness               // duplicate primary or composite key
	ErrKindDanglingRef              // foreign key with no matching target row
	ErrKindOutOfOrder               // entity registered before a dependency
	ErrKindInvalidInput             // bad arguments from the caller
	ErrKindNotFound                 // no rows, no object, no bucket
	ErrKindConnectionFailed         // cannot reach the backend
	ErrKindTimeout                  // context deadline / cancellation
	ErrKindQueryFailed              // SQL or storage operation error
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindAttribute:
		return "attribute_violation"
	case ErrKindUniqueness:
		return "uniqueness_violation"
	case ErrKindDanglingRef:
		return "dangling_reference"
	case ErrKindOutOfOrder:
		return "out_of_order_load"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindQueryFailed:
		return "query_failed"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all tpchkit subsystems.
// For data-quality violations the context fields locate the bad input:
// which entity, which row of the batch, which column or key, and — for
// dangling references — which target entity and key column were missed.
type Error struct {
	Kind    ErrKind
	Message string

	Entity string // entity the violation occurred in ("" when not applicable)
	Row    int    // zero-based row ordinal within the offending batch, -1 when unknown
	Column string // offending column, "" when the violation is row- or batch-level

	Key          any    // offending primary or foreign key value
	TargetEntity string // referenced entity, for dangling references
	TargetKey    string // referenced key column(s), for dangling references

	Cause error // original backend-level error, preserved for logging
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Entity != "" {
		loc := e.Entity
		if e.Row >= 0 {
			loc = fmt.Sprintf("%s row %d", e.Entity, e.Row)
		}
		if e.Column != "" {
			loc = fmt.Sprintf("%s column %s", loc, e.Column)
		}
		msg = fmt.Sprintf("[%s] %s: %s", e.Kind, loc, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Row: -1}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Row: -1, Cause: cause}
}

// Attribute reports a value outside its column's declared domain
// (wrong type, over-width string, value outside an enumeration, negative
// quantity, excess decimal scale).
func Attribute(entity string, row int, column, msg string) *Error {
	return &Error{
		Kind:    ErrKindAttribute,
		Message: msg,
		Entity:  entity,
		Row:     row,
		Column:  column,
	}
}

// Uniqueness reports a duplicate primary or composite key within an entity.
func Uniqueness(entity string, row int, key any) *Error {
	return &Error{
		Kind:    ErrKindUniqueness,
		Message: fmt.Sprintf("duplicate key %v", key),
		Entity:  entity,
		Row:     row,
		Key:     key,
	}
}

// Dangling reports a foreign key (or composite foreign-key tuple) with no
// matching row in the target entity.
func Dangling(entity string, row int, key any, targetEntity, targetKey string) *Error {
	return &Error{
		Kind:         ErrKindDanglingRef,
		Message:      fmt.Sprintf("key %v has no match in %s(%s)", key, targetEntity, targetKey),
		Entity:       entity,
		Row:          row,
		Key:          key,
		TargetEntity: targetEntity,
		TargetKey:    targetKey,
	}
}

// OutOfOrder reports an entity registered before one of its dependencies.
func OutOfOrder(entity, missing string) *Error {
	return &Error{
		Kind:         ErrKindOutOfOrder,
		Message:      fmt.Sprintf("dependency %s is not loaded yet", missing),
		Entity:       entity,
		Row:          -1,
		TargetEntity: missing,
	}
}

// --- Predicates ---

// IsAttribute reports whether err is an attribute-domain violation.
func IsAttribute(err error) bool {
	return kindOf(err) == ErrKindAttribute
}

// IsUniqueness reports whether err is a duplicate-key violation.
func IsUniqueness(err error) bool {
	return kindOf(err) == ErrKindUniqueness
}

// IsDanglingRef reports whether err is a dangling foreign-key reference.
func IsDanglingRef(err error) bool {
	return kindOf(err) == ErrKindDanglingRef
}

// IsOutOfOrder reports whether err is an out-of-order entity registration.
func IsOutOfOrder(err error) bool {
	return kindOf(err) == ErrKindOutOfOrder
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return kindOf(err) == ErrKindInvalidInput
}

// IsNotFound reports whether err represents a "not found" result
// (no rows, missing object, unknown table/bucket, …).
func IsNotFound(err error) bool {
	return kindOf(err) == ErrKindNotFound
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return kindOf(err) == ErrKindTimeout
}

// IsConnectionFailed reports whether err is a connectivity or auth failure.
func IsConnectionFailed(err error) bool {
	return kindOf(err) == ErrKindConnectionFailed
}

// IsQueryFailed reports whether err is a backend operation failure
// (SQL execution error, storage I/O error, …).
func IsQueryFailed(err error) bool {
	return kindOf(err) == ErrKindQueryFailed
}

// kindOf extracts the ErrKind from any error in the chain.
func kindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
