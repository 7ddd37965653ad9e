// Package schema defines the declarative form description: an ordered list of
// rows and containers whose fields the engine compiles into bindings. Rows and
// containers form a closed set of node types so walkers switch over them
// exhaustively. Documents round-trip through JSON and YAML without losing
// order or names; callback fields (OnChange, DynamicProps) are code-only.
package schema
