/*
Package template fills ${name} placeholders in prompt text.

The prompt builders in view and generate embed whole JSON documents and
free-form user text, so only the brace form is recognized and substitution
is a single pass: a value is never rescanned for placeholders.

# Usage

	t := template.New("sop", "Write the SOP in ${language}.\n\n${workflow}")
	prompt, err := t.Execute(map[string]any{
	    "language": "English",
	    "workflow": doc,
	})

By default a missing variable is an error (*UndefinedVariableError), so an
incomplete prompt never reaches a model. WithMissingAction relaxes this:

	t := template.New("draft", text, template.WithMissingAction(template.MissingKeep))

Expand is the relaxed one-off form.
*/
package template
