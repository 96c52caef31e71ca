// Package errors provides structured error handling with i18n support.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"
	// CodeNotFound reports a missing host record.
	CodeNotFound Code = "NOT_FOUND"

	// Scene errors
	CodeSceneNotActive Code = "SCENE_NOT_ACTIVE"
	CodeSceneEmpty     Code = "SCENE_EMPTY"

	// Token errors
	CodeTokenUpdateFailed Code = "TOKEN_UPDATE_FAILED"
	CodeTokenPatchInvalid Code = "TOKEN_PATCH_INVALID"

	// Actor errors
	CodeActorInvalidType Code = "ACTOR_INVALID_TYPE"

	// Fixture errors
	CodeFixtureInvalid Code = "FIXTURE_INVALID"

	// CodeUnexpectedFailure marks a failure caught by the outer run boundary.
	CodeUnexpectedFailure Code = "UNEXPECTED_FAILURE"
)
