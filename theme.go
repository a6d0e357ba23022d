package tutor

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	UserMsg int // User message accent
	Status  int // Status line ("Thinking...")
	Error   int // Failure placeholders
	Success int // Success indicators
	Muted   int // Help text, placeholders
	CodeBg  int // Code block background
	Accent  int // Headings, links, book title
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg: 4,
		Status:  6,
		Error:   1,
		Success: 2,
		Muted:   8,
		CodeBg:  0,
		Accent:  5,
	}
}
