// Package ui provides semantic text formatting for CLI output.
//
// Formatters colorize content when the terminal supports it. When NO_COLOR
// is set or colors are unavailable, text decorations are used instead.
//
//	ui.Code.Sprint("shroud unlock")       // Commands
//	ui.Path.Sprint("encrypted_profile")   // File paths
//	ui.Highlight.Sprint("firefox")        // User values
//	ui.Muted.Sprint("optional")           // De-emphasized text
//
// Status lines combine an indicator with a message:
//
//	ui.Done("Profile unlocked")   // ✓ Profile unlocked
//	ui.Failed("Wrong passphrase") // ✗ Wrong passphrase
//	ui.Hint("Run %s", cmd)        // → Run ...
//
// Without colors, Code is wrapped in `backticks`, Highlight in 'quotes' and
// Muted in (parentheses). Other formatters leave the text unchanged.
package ui
