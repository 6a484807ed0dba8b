// Package core provides the back-office business logic behind the HTTP API
// and the operator CLI.
//
// This package holds all domain rules independent of transport. Web
// handlers, the backofficectl tool and tests drive the same [Service].
//
// # Export Drafts
//
// A draft is one user's in-progress export configuration. The Service keeps
// the current [export.Config] value per draft id and replaces it on every
// action:
//
//	view, err := svc.CreateDraft(ctx, userID, "orders")
//	view, err = svc.ApplyDraftAction(ctx, userID, view.ID, export.Action{
//	    Type:     export.ActionAddFilter,
//	    Field:    "channel",
//	    Operator: export.OpIn,
//	    Value:    []string{"dine_in"},
//	})
//
// Every returned [DraftView] carries a freshly computed summary. Drafts of
// another user are reported as not found. Idle drafts expire after
// [Options.DraftTTL] and are removed by [Service.StartDraftSweeper].
//
// # Allergens
//
// [Service.DeleteAllergen] removes an allergen after checking that the
// caller holds an active membership on the merchant owning the allergen's
// location. Menu item links cascade in the database.
//
// # Error Handling
//
// Operations return [*Error] values whose [Kind] selects the HTTP status.
// Technical errors are mapped to user-facing messages with support codes
// using [MapError]:
//
//   - AUTH001-AUTH002: session and access errors
//   - ALG001-ALG002: allergen errors
//   - EXP001-EXP012: export configuration and draft errors
//   - DB001-DB007: database errors (constraints, connectivity)
//   - REQ001-REQ003: cancelled, timed out or unreadable requests
//
// # Audit Logging
//
// Sensitive operations are recorded in the audit log with severity levels:
//
//   - Medium: session creation, export scheduling
//   - High: allergen deletion
package core
