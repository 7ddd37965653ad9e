// Package validation provides a form.Validator for the common field rules
// (required, min, max, minLength, maxLength, pattern). Each field's rules are
// compiled into an OpenAPI schema and checked with kin-openapi.
package validation
