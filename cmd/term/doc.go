// Command term runs the portfolio terminal in a local shell.
//
// It hosts the same terminal session the website embeds, rendered with
// bubbletea. Projects come from the portfolio API through the resilient
// client; everything else is local.
//
// Usage:
//
//	term --api-url http://localhost:8000/api --theme magic
//	term --offline
//
// The exit command restores the default site theme, which closes the
// program after the exit delay.
package main
