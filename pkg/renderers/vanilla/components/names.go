package components

// Canonical component names rendered by the default registry. They match the
// built-in widget bindings.
const (
	NameText     = "text"
	NameNumber   = "number"
	NameCheckbox = "checkbox"
	NameSwitch   = "switch"
	NameSelect   = "select"
	NameTextArea = "textarea"
	NameDate     = "date"
)
