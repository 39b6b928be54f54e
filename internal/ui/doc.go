// Package ui provides semantic text formatting for CLI output.
//
// Formatters colorize when the terminal supports it. When NO_COLOR is set
// or colors are unavailable, some formatters fall back to text decorations
// instead:
//
//	ui.Code.Sprint("envstore decrypt")  // `envstore decrypt`
//	ui.Highlight.Sprint("API_KEY")      // 'API_KEY'
//	ui.Muted.Sprint("tagged")           // (tagged)
//	ui.Path.Sprint(".env.store")        // .env.store
//
// SuccessLine, ErrorLine and WarningLine prefix a message with a status mark
// and are what commands pass as the spinner's final message.
package ui
