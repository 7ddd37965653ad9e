// Package orchestrator mounts a schema as a live form session. A session owns
// the form-state store, compiles the schema into render plans, binds fields,
// reshapes submissions, routes server errors back onto fields and keeps an
// optional URL query in sync.
package orchestrator
