// Package ui implements the interactive terminal status view, built on tview.
package ui

import (
	"github.com/gdamore/tcell/v2"
)

// Theme defines the color scheme for the interactive view.
var Theme = struct {
	Primary tcell.Color
	Success tcell.Color
	Warning tcell.Color
	Error   tcell.Color

	Text    tcell.Color
	TextDim tcell.Color

	Background tcell.Color
	Header     tcell.Color
	Selection  tcell.Color
}{
	Primary: tcell.ColorBlue,
	Success: tcell.ColorGreen,
	Warning: tcell.ColorYellow,
	Error:   tcell.ColorRed,

	Text:    tcell.ColorWhite,
	TextDim: tcell.ColorGray,

	Background: tcell.ColorBlack,
	Header:     tcell.ColorYellow,
	Selection:  tcell.ColorTeal,
}
