// Package validation validates decoded API request bodies.
//
// Request types declare their rules with `validate` struct tags, which are
// checked by go-playground/validator. Failures are reported per JSON field
// name so the admin dashboard can show them next to the matching input.
//
// # Functions
//
//   - Validate: Check a request struct and return *Error on failure
//   - FromValueErrors: Convert product value failures to field errors
//
// # Custom Rules
//
//   - slug: lowercase letters, digits and single hyphens
//   - phone: 6 to 20 characters of digits, spaces and + - ( )
//
// # Usage
//
//	var req CreateCategoryRequest
//	if err := validation.Validate(req); err != nil {
//	    // Return 400 Bad Request with err.(*validation.Error).Fields
//	}
package validation
