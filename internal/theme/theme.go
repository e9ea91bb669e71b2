package theme

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles describes reusable Lip Gloss styles shared across the UI.
type Styles struct {
	Root       *lipgloss.Style
	Guide      *lipgloss.Style
	File       *lipgloss.Style
	Directory  *lipgloss.Style
	Symlink    *lipgloss.Style
	Restricted *lipgloss.Style
	FoldMark   *lipgloss.Style
	Focused    *lipgloss.Style
	Error      *lipgloss.Style
	Info       *lipgloss.Style
	Status     *lipgloss.Style
	Footer     *lipgloss.Style
}

// Default focus background and tree foreground.
const (
	DefaultBackground = "4"
	DefaultForeground = "7"
)

var defaultStyles = New(DefaultForeground, DefaultBackground)

// Default exposes the standard style set used across the application.
func Default() *Styles {
	return &defaultStyles
}

// New builds a style set drawing the tree in fg and highlighting the focused
// line with bg. Empty values fall back to the defaults.
func New(fg, bg string) Styles {
	if fg == "" {
		fg = DefaultForeground
	}
	if bg == "" {
		bg = DefaultBackground
	}
	base := lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
	return Styles{
		Root:       ptr(base.Bold(true)),
		Guide:      ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))),
		File:       ptr(base),
		Directory:  ptr(base.Foreground(lipgloss.Color("33")).Bold(true)),
		Symlink:    ptr(base.Foreground(lipgloss.Color("37")).Italic(true)),
		Restricted: ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("196"))),
		FoldMark:   ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)),
		Focused:    ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color(bg)).Bold(true)),
		Error:      ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)),
		Info:       ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("249"))),
		Status:     ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("245"))),
		Footer:     ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("241"))),
	}
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}

// ErrUnknownColor is returned for colour values that are neither a known name,
// an ANSI index nor a hex code.
var ErrUnknownColor = errors.New("unrecognized color")

var namedColors = map[string]int{
	"black":   0,
	"red":     1,
	"green":   2,
	"yellow":  3,
	"blue":    4,
	"magenta": 5,
	"cyan":    6,
	"white":   7,
}

// ResolveColor maps a user-supplied colour to a lipgloss colour value. Names
// accept a "light" prefix for the bright variant.
func ResolveColor(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return "", nil
	}
	if code, ok := namedColors[v]; ok {
		return strconv.Itoa(code), nil
	}
	if base, ok := strings.CutPrefix(v, "light"); ok {
		if code, ok := namedColors[base]; ok {
			return strconv.Itoa(code + 8), nil
		}
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 255 {
		return v, nil
	}
	if hexColor.MatchString(v) {
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownColor, value)
}

var hexColor = regexp.MustCompile(`^#([0-9a-f]{3}|[0-9a-f]{6})$`)
