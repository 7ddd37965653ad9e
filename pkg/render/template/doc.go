// Package template defines the template engine seam used by HTML renderers.
package template
