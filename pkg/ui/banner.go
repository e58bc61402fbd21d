// Package ui holds terminal decoration shared by the status view.
package ui

import "strings"

const (
	reset   = "\033[0m"
	bold    = "\033[1m"
	ember   = "\033[38;5;208m"
	amber   = "\033[38;5;214m"
	lemon   = "\033[38;5;226m"
	mint    = "\033[38;5;121m"
	seafoam = "\033[38;5;49m"
	cobalt  = "\033[38;5;33m"
	indigo  = "\033[38;5;61m"
	fuchsia = "\033[38;5;177m"
)

// Tagline follows the wordmark.
const Tagline = "which apps cost you right now"

var (
	glyphA = []string{" █████╗ ", "██╔══██╗", "███████║", "██╔══██║", "██║  ██║", "╚═╝  ╚═╝"}
	glyphP = []string{"██████╗ ", "██╔══██╗", "██████╔╝", "██╔═══╝ ", "██║     ", "╚═╝     "}
	glyphI = []string{"██╗", "██║", "██║", "██║", "██║", "╚═╝"}
	glyphM = []string{"███╗   ███╗", "████╗ ████║", "██╔████╔██║", "██║╚██╔╝██║", "██║ ╚═╝ ██║", "╚═╝     ╚═╝"}
	glyphC = []string{" ██████╗", "██╔════╝", "██║     ", "██║     ", "╚██████╗", " ╚═════╝"}
	glyphT = []string{"████████╗", "╚══██╔══╝", "   ██║   ", "   ██║   ", "   ██║   ", "   ╚═╝   "}
)

// Banner renders a colored appimpact wordmark.
func Banner() string {
	var b strings.Builder

	letters := [][]string{glyphA, glyphP, glyphP, glyphI, glyphM, glyphP, glyphA, glyphC, glyphT}
	gradient := []string{ember, amber, lemon, mint, seafoam, cobalt, indigo, fuchsia}
	rows := make([]string, len(glyphA))
	for i, letter := range letters {
		color := gradient[i%len(gradient)]
		for row := range letter {
			rows[row] += color + letter[row] + " "
		}
	}
	for _, line := range rows {
		b.WriteString(bold + line + reset + "\n")
	}

	b.WriteString("\n")
	b.WriteString(bold + ember + "appimpact" + reset + "  •  " + Tagline + "\n\n")

	return b.String()
}
