// Package plan compiles a schema into an ordered render plan for one
// form-state snapshot, and collects the flat wire names the form state is
// keyed by.
package plan
