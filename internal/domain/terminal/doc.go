// Package terminal implements the portfolio's interactive command terminal.
//
// A Session owns everything a mounted terminal needs:
//   - Session log: ordered entries (input, output, timestamp)
//   - Input history with a recall cursor for up/down navigation
//   - A project cache filled once, asynchronously, at mount
//   - Pending delayed work, cancelled on Close
//
// Commands dispatch through a flat table of handlers; each handler receives
// its arguments and an Env and returns an Output. Theme changes go through
// the injected ThemeController, so the terminal never owns theme state.
//
// Example Usage:
//
//	themes := terminal.NewThemeState(terminal.ThemeCmd, onThemeChange)
//	session := terminal.NewSession(terminal.Config{Theme: themes, Projects: source})
//	session.Mount(ctx)
//	defer session.Close()
//
//	res := session.Execute("theme magic")
//	// → themes.SetTheme("magic") called once, one entry appended
//
//	session.RecallPrevious()
//	// → "theme magic" staged in the input buffer
package terminal
