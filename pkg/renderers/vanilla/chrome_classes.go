package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm      ChromeClass = "formrows-form"
	ClassRow       ChromeClass = "formrows-row"
	ClassCell      ChromeClass = "formrows-cell"
	ClassSection   ChromeClass = "formrows-section"
	ClassAccordion ChromeClass = "formrows-accordion"
	ClassOptions   ChromeClass = "formrows-options"
	ClassDivider   ChromeClass = "formrows-divider"
	ClassActions   ChromeClass = "formrows-actions"
	ClassErrors    ChromeClass = "formrows-errors"
)

// Chrome holds the class names templates put on structural elements.
type Chrome struct {
	Form      string
	Row       string
	Cell      string
	Section   string
	Accordion string
	Options   string
	Divider   string
	Actions   string
	Errors    string
}

// DefaultChrome returns the built-in class names.
func DefaultChrome() Chrome {
	return Chrome{
		Form:      string(ClassForm),
		Row:       string(ClassRow),
		Cell:      string(ClassCell),
		Section:   string(ClassSection),
		Accordion: string(ClassAccordion),
		Options:   string(ClassOptions),
		Divider:   string(ClassDivider),
		Actions:   string(ClassActions),
		Errors:    string(ClassErrors),
	}
}

// merge keeps the defaults for every empty override.
func (c Chrome) merge(override Chrome) Chrome {
	pick := func(base, over string) string {
		if cleaned := sanitizeClassList(over); cleaned != "" {
			return cleaned
		}
		return base
	}
	return Chrome{
		Form:      pick(c.Form, override.Form),
		Row:       pick(c.Row, override.Row),
		Cell:      pick(c.Cell, override.Cell),
		Section:   pick(c.Section, override.Section),
		Accordion: pick(c.Accordion, override.Accordion),
		Options:   pick(c.Options, override.Options),
		Divider:   pick(c.Divider, override.Divider),
		Actions:   pick(c.Actions, override.Actions),
		Errors:    pick(c.Errors, override.Errors),
	}
}
