package ui

import "fmt"

// ANSI256 color codes.
const (
	colorAccent = 74  // blue
	colorMuted  = 245 // medium gray
	colorGood   = 114 // green
	colorActive = 179 // amber
	colorBad    = 167 // red
)

var noColor bool

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorAccent, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorMuted, s)
}

// RenderStage colors a lifecycle stage: green for stabilized, amber for
// construction and lease-up, gray for terminal stages, plain otherwise.
func RenderStage(stage string) string {
	if noColor {
		return stage
	}
	var code int
	switch stage {
	case "Stabilized":
		code = colorGood
	case "Under Construction", "Lease-Up":
		code = colorActive
	case "Liquidated", "Dead":
		code = colorMuted
	default:
		return stage
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, stage)
}

// RenderDirty marks a field name that has unsaved or just-saved edits.
func RenderDirty(s string) string {
	if noColor {
		return s + "*"
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s*\x1b[0m", colorBad, s)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
