package main

// Defaults for CLI commands.
const (
	DefaultHistoryLimit = 20
	MaxCellWidth        = 40
)

// Valid export formats.
var validFormats = []string{"json", "csv", "markdown"}
