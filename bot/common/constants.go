package common

// Embed colors
const (
	ColorPrimary = 0x5865F2 // Discord blurple
	ColorSuccess = 0x00FF00 // Green
	ColorDanger  = 0xFF0000 // Red
	ColorWarning = 0xFFD700 // Gold
	ColorInfo    = 0xADD8E6 // Light blue
	ColorBalance = 0xFFFF00 // Yellow
	ColorHelp    = 0xADFF2F // Green yellow
	ColorCompany = 0x4682B4 // Steel blue
	ColorStock   = 0x1E90FF // Dodger blue
)

// CurrencyName is appended to every displayed amount
const CurrencyName = "いんコイン"

// MaxAutocompleteChoices is the Discord limit for autocomplete results
const MaxAutocompleteChoices = 25
