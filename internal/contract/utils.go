package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/brewwater/schema"
)

// Color variables for console output.
var (
	MagnesiumColor = color.New(color.FgCyan, color.Bold)   // brightness side of GH
	CalciumColor   = color.New(color.FgYellow, color.Bold) // body side of GH
	PotassiumColor = color.New(color.FgMagenta)            // KH potassium buffer
	SodiumColor    = color.New(color.FgBlue)               // KH sodium buffer
	NoticeColor    = color.New(color.FgRed, color.Bold)    // zero-drop warnings
	HeaderColor    = color.New(color.FgGreen, color.Bold)  // section titles
	MutedColor     = color.New(color.FgHiBlack)            // footnotes
)

var mineralColors = map[schema.Mineral]*color.Color{
	schema.Magnesium:            MagnesiumColor,
	schema.Calcium:              CalciumColor,
	schema.PotassiumBicarbonate: PotassiumColor,
	schema.SodiumBicarbonate:    SodiumColor,
}

// GetPlainLabel returns the display label for a mineral. This is the core
// logic used for CSV, JSON, and table printing.
func GetPlainLabel(m schema.Mineral) string {
	return schema.GetMineralLabel(m)
}

// GetColorLabel returns a colored mineral label for console output (table).
func GetColorLabel(m schema.Mineral) string {
	c, ok := mineralColors[m]
	if !ok {
		return GetPlainLabel(m)
	}
	return c.Sprint(GetPlainLabel(m))
}

// GetDropsLabel formats a rounded drop count, flagging zero drops in color
// when the raw count was positive.
func GetDropsLabel(d schema.Dose, useColors bool) string {
	text := fmt.Sprintf("%d", d.RoundedDropCount)
	if useColors && d.RoundedDropCount == 0 && d.RawDropCount > 0 {
		return NoticeColor.Sprint(text)
	}
	return text
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for recipe history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".brewwater_history.db"
	}
	return filepath.Join(homeDir, ".brewwater_history.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the "..." and one rune of content.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
