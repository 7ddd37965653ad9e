// Package openapi builds form schemas from the request bodies of OpenAPI 3
// operations. Layout hints live under the x-formrows extension of each
// property: order, row, label, placeholder, component, layout, container,
// option, controlledBy, dividerBefore and skip.
package openapi
