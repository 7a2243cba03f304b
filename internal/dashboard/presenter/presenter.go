// Package presenter maps a prediction result to what the operator sees.
// Everything here is a pure function of its inputs.
package presenter

import (
	"fmt"
	"math"
	"strings"

	"fraudlens/internal/dashboard/theme"
	"fraudlens/internal/models"
)

// Tier grades how strongly a result should be highlighted. It drives
// colours and icons only.
type Tier string

const (
	TierHigh           Tier = "high"
	TierMedium         Tier = "medium"
	TierLow            Tier = "low"
	TierVerySafe       Tier = "very safe"
	TierSafe           Tier = "safe"
	TierBorderlineSafe Tier = "borderline-safe"
)

// TierOf grades a result. Boundaries are strict: confidence 0.5 on a
// fraud result is "low", on a safe result "borderline-safe".
func TierOf(r models.PredictionResult) Tier {
	c := r.Confidence
	if r.Fraud {
		switch {
		case c > 0.8:
			return TierHigh
		case c > 0.5:
			return TierMedium
		default:
			return TierLow
		}
	}
	switch {
	case c < 0.2:
		return TierVerySafe
	case c < 0.5:
		return TierSafe
	default:
		return TierBorderlineSafe
	}
}

const displayIDLength = 16

// DisplayID is the first 16 characters of id followed by an ellipsis.
func DisplayID(id string) string {
	if id == "" {
		return ""
	}
	r := []rune(id)
	if len(r) > displayIDLength {
		r = r[:displayIDLength]
	}
	return string(r) + "..."
}

// Palette holds the colours for one tier in one theme mode.
type Palette struct {
	Accent     string
	Background string
	Icon       string
	// ANSI is the terminal colour escape for the accent.
	ANSI string
}

type paletteKey struct {
	tier Tier
	mode theme.Mode
}

var palettes = map[paletteKey]Palette{
	{TierHigh, theme.Light}:           {Accent: "#dc2626", Background: "#fef2f2", Icon: "alert-octagon", ANSI: "\033[1;31m"},
	{TierHigh, theme.Dark}:            {Accent: "#f87171", Background: "#450a0a", Icon: "alert-octagon", ANSI: "\033[1;91m"},
	{TierMedium, theme.Light}:         {Accent: "#ea580c", Background: "#fff7ed", Icon: "alert-triangle", ANSI: "\033[31m"},
	{TierMedium, theme.Dark}:          {Accent: "#fb923c", Background: "#431407", Icon: "alert-triangle", ANSI: "\033[91m"},
	{TierLow, theme.Light}:            {Accent: "#ca8a04", Background: "#fefce8", Icon: "alert-circle", ANSI: "\033[33m"},
	{TierLow, theme.Dark}:             {Accent: "#facc15", Background: "#422006", Icon: "alert-circle", ANSI: "\033[93m"},
	{TierVerySafe, theme.Light}:       {Accent: "#16a34a", Background: "#f0fdf4", Icon: "shield-check", ANSI: "\033[1;32m"},
	{TierVerySafe, theme.Dark}:        {Accent: "#4ade80", Background: "#052e16", Icon: "shield-check", ANSI: "\033[1;92m"},
	{TierSafe, theme.Light}:           {Accent: "#059669", Background: "#ecfdf5", Icon: "check-circle", ANSI: "\033[32m"},
	{TierSafe, theme.Dark}:            {Accent: "#34d399", Background: "#022c22", Icon: "check-circle", ANSI: "\033[92m"},
	{TierBorderlineSafe, theme.Light}: {Accent: "#0d9488", Background: "#f0fdfa", Icon: "info", ANSI: "\033[36m"},
	{TierBorderlineSafe, theme.Dark}:  {Accent: "#2dd4bf", Background: "#042f2e", Icon: "info", ANSI: "\033[96m"},
}

// PaletteFor returns the palette of a tier, using the light palette for
// an unknown mode.
func PaletteFor(t Tier, mode theme.Mode) Palette {
	if p, ok := palettes[paletteKey{t, mode}]; ok {
		return p
	}
	return palettes[paletteKey{t, theme.Light}]
}

// View is the rendered result card.
type View struct {
	Headline          string
	Message           string
	Tier              Tier
	ConfidencePercent int
	// BarWidth is the CSS-style width of the confidence bar, e.g. "97%".
	BarWidth  string
	DisplayID string
	CopyID    string
	Timestamp string
	Palette   Palette
}

// Present builds the result card for r in the given theme mode.
func Present(r models.PredictionResult, mode theme.Mode) View {
	headline := "Transaction Safe"
	if r.Fraud {
		headline = "Fraud Detected"
	}

	pct := int(math.Round(clamp01(r.Confidence) * 100))
	tier := TierOf(r)

	return View{
		Headline:          headline,
		Message:           r.Message,
		Tier:              tier,
		ConfidencePercent: pct,
		BarWidth:          fmt.Sprintf("%d%%", pct),
		DisplayID:         DisplayID(r.TransactionID),
		CopyID:            r.TransactionID,
		Timestamp:         r.Timestamp,
		Palette:           PaletteFor(tier, mode),
	}
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

const (
	barCells  = 20
	ansiReset = "\033[0m"
)

// Text renders v for a terminal. color enables ANSI escapes.
func (v View) Text(color bool) string {
	var b strings.Builder

	accent, reset := "", ""
	if color {
		accent, reset = v.Palette.ANSI, ansiReset
	}

	filled := v.ConfidencePercent * barCells / 100
	fmt.Fprintf(&b, "%s%s%s (%s)\n", accent, v.Headline, reset, v.Tier)
	if v.Message != "" {
		fmt.Fprintf(&b, "%s\n", v.Message)
	}
	fmt.Fprintf(&b, "Confidence  [%s%s%s%s] %s\n",
		accent, strings.Repeat("#", filled), reset, strings.Repeat(".", barCells-filled), v.BarWidth)
	if v.DisplayID != "" {
		fmt.Fprintf(&b, "Transaction %s\n", v.DisplayID)
	}
	if v.Timestamp != "" {
		fmt.Fprintf(&b, "Scored at   %s\n", v.Timestamp)
	}
	return b.String()
}
