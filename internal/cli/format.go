package cli

import "regexp"

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// renderAnswer converts the markdown bold spans the model likes to emit into
// terminal bold, leaving the rest of the text untouched.
func renderAnswer(text string) string {
	return boldPattern.ReplaceAllString(text, "\x1b[1m$1\x1b[0m")
}
