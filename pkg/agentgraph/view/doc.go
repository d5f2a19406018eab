// Package view renders workflows for export and display: clean JSON, a
// Mermaid diagram and its chart URL, a Markdown document, and the prompt
// that asks a model for a Standard Operating Procedure.
//
// Every function is pure and deterministic.
package view
