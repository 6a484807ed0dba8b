// Package core error codes.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # Authentication Errors (AUTH001-AUTH099)
//
//	AUTH001 - Not logged in: Session missing, invalid or expired
//	          Action: Log in again
//	          Patterns: "unauthorized"
//
//	AUTH002 - Forbidden: The caller has no active membership for the resource
//	          Action: Ask a merchant owner for access
//	          Patterns: "forbidden"
//
// # Allergen Errors (ALG001-ALG099)
//
//	ALG001 - Allergen not found
//	         Action: Refresh the allergen list
//	         Patterns: "allergen not found"
//
//	ALG002 - Allergen ID missing
//	         Action: Select an allergen before deleting
//	         Patterns: "allergen id is required"
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Unknown dataset                Patterns: "unknown dataset"
//	EXP002 - Dataset disabled               Patterns: "dataset is disabled"
//	EXP003 - Unknown field                  Patterns: "unknown field"
//	EXP004 - Operator not allowed           Patterns: "operator not allowed"
//	EXP005 - Invalid filter value           Patterns: "invalid filter value"
//	EXP006 - Invalid date range or option   Patterns: "invalid date range", "invalid export option"
//	EXP007 - Personal data not acknowledged Patterns: "personal data not acknowledged"
//	EXP008 - No columns selected            Patterns: "no columns selected"
//	EXP009 - Draft not found                Patterns: "draft not found"
//	EXP010 - Too many drafts                Patterns: "too many drafts"
//	EXP011 - Unknown action                 Patterns: "unknown action"
//	EXP012 - Estimator busy                 Patterns: "too many concurrent estimates"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key                  Patterns: "duplicate key"
//	DB002 - Unique constraint              Patterns: "unique constraint", "violates unique"
//	DB003 - Foreign key                    Patterns: "foreign key constraint", "violates foreign key"
//	DB004 - Connection refused             Patterns: "connection refused"
//	DB005 - Connection reset               Patterns: "connection reset"
//	DB006 - Timeout                        Patterns: "timeout"
//	DB007 - Deadlock or busy database      Patterns: "deadlock", "database is locked"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled             Patterns: "context canceled"
//	REQ002 - Request timed out             Patterns: "context deadline exceeded"
//	REQ003 - Malformed request body        Patterns: "request body"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Too many requests            Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns are listed
// before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins.
var errorPatterns = []errorPattern{
	// Malformed bodies are reported before their decoder text can match a
	// domain pattern such as "unknown field".
	{
		pattern: "request body",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Check the request body and try again",
			Code:    "REQ003",
		},
	},

	// =========================================================================
	// Authentication (AUTH001-AUTH002)
	// =========================================================================
	{
		pattern: "unauthorized",
		msg: UserMessage{
			Message: "You are not logged in",
			Action:  "Log in again",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "forbidden",
		msg: UserMessage{
			Message: "You don't have access to this resource",
			Action:  "Ask a merchant owner for access",
			Code:    "AUTH002",
		},
	},

	// =========================================================================
	// Allergens (ALG001-ALG002)
	// =========================================================================
	{
		pattern: "allergen not found",
		msg: UserMessage{
			Message: "Allergen not found",
			Action:  "Refresh the allergen list",
			Code:    "ALG001",
		},
	},
	{
		pattern: "allergen id is required",
		msg: UserMessage{
			Message: "No allergen was selected",
			Action:  "Select an allergen before deleting",
			Code:    "ALG002",
		},
	},

	// =========================================================================
	// Export Builder (EXP001-EXP011)
	// =========================================================================
	{
		pattern: "unknown dataset",
		msg: UserMessage{
			Message: "Dataset not found",
			Action:  "Choose a dataset from the list",
			Code:    "EXP001",
		},
	},
	{
		pattern: "dataset is disabled",
		msg: UserMessage{
			Message: "This dataset is not available for export",
			Action:  "Choose another dataset",
			Code:    "EXP002",
		},
	},
	{
		pattern: "unknown field",
		msg: UserMessage{
			Message: "Field does not exist in this dataset",
			Action:  "Pick a field from the dataset's field list",
			Code:    "EXP003",
		},
	},
	{
		pattern: "operator not allowed",
		msg: UserMessage{
			Message: "Operator cannot be used with this field",
			Action:  "Pick one of the operators offered for the field",
			Code:    "EXP004",
		},
	},
	{
		pattern: "invalid filter value",
		msg: UserMessage{
			Message: "Filter value is not valid for this field",
			Action:  "Check the value format or allowed values",
			Code:    "EXP005",
		},
	},
	{
		pattern: "invalid date range",
		msg: UserMessage{
			Message: "Date range is not valid",
			Action:  "Make sure the end date is after the start date",
			Code:    "EXP006",
		},
	},
	{
		pattern: "invalid export option",
		msg: UserMessage{
			Message: "Export option is not supported",
			Action:  "Pick a listed granularity, format or destination",
			Code:    "EXP006",
		},
	},
	{
		pattern: "personal data not acknowledged",
		msg: UserMessage{
			Message: "This export contains personal data",
			Action:  "Acknowledge the personal data notice before exporting",
			Code:    "EXP007",
		},
	},
	{
		pattern: "no columns selected",
		msg: UserMessage{
			Message: "No columns are selected",
			Action:  "Select at least one column",
			Code:    "EXP008",
		},
	},
	{
		pattern: "draft not found",
		msg: UserMessage{
			Message: "Export draft not found",
			Action:  "The draft may have expired. Please start a new export",
			Code:    "EXP009",
		},
	},
	{
		pattern: "too many drafts",
		msg: UserMessage{
			Message: "System is busy with other exports",
			Action:  "Please wait a moment and try again",
			Code:    "EXP010",
		},
	},
	{
		pattern: "unknown action",
		msg: UserMessage{
			Message: "Unsupported export action",
			Action:  "Reload the page and try again",
			Code:    "EXP011",
		},
	},
	{
		pattern: "too many concurrent estimates",
		msg: UserMessage{
			Message: "The estimator is busy",
			Action:  "Try again in a few seconds",
			Code:    "EXP012",
		},
	},

	// =========================================================================
	// Database Constraint Errors (DB001-DB003)
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Check the record ID",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Choose a different value",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A duplicate value was found",
			Action:  "Choose a different value",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key constraint",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Ensure parent records exist first",
			Code:    "DB003",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Ensure parent records exist first",
			Code:    "DB003",
		},
	},

	// =========================================================================
	// Database Connection Errors (DB004-DB007)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "database is locked",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ002)
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again or narrow the export",
			Code:    "REQ002",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// This is the fallback for unexpected errors. Support staff should check
// application logs for the original technical error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := errors.New("duplicate key violation")
//	msg := MapError(err)
//	// msg.Code == "DB001"
//	// msg.Message == "A record with this ID already exists"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
//
// Example output: "Allergen not found (Code: ALG001). Refresh the allergen list"
//
// This is the primary function for displaying errors to end users.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
// Use this to decide whether to show the raw error or the mapped user message.
//
// Example:
//
//	if IsUserFacing(err) {
//	    showToUser(FormatUserError(err))
//	} else {
//	    log.Error(err) // Log technical error
//	    showToUser("An error occurred. Please try again.")
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// The returned UserError preserves the original technical error for logging via Unwrap(),
// while providing a clean user message via Error().
//
// Returns nil if err is nil.
//
// Example:
//
//	ue := NewUserError(dbErr)
//	log.Error(ue.Technical)          // Log original error
//	fmt.Println(ue.Error())           // Show "A record with this ID already exists"
//	fmt.Println(ue.User.Code)         // Show "DB001"
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
