// Package httpform serves a form session over HTTP. GET requests import the
// URL query and render the form; POST requests accept form-urlencoded or
// JSON bodies, submit, and either re-render with errors or redirect to the
// synchronised URL.
package httpform
