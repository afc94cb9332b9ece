// Package ui holds the terminal presentation of wordcount.
//
// A [Palette] holds named lipgloss styles (title, ok, err, warn, help). [Plain] renders text
// unchanged, which the CLI uses when output is not a terminal and in tests.
//
// [Model] is the bubbletea program behind `wordcount tui`: a list of stored results, the word
// counts of one result, a form that counts a new URL with live progress, and a delete confirmation.
package ui
