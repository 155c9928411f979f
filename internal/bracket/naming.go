package bracket

import "fmt"

// RoundName returns the display name for a winners-side round given the
// total number of rounds in that bracket.
func RoundName(round, totalRounds int) string {
	switch totalRounds - round {
	case 0:
		return "Final"
	case 1:
		return "Semifinal"
	case 2:
		return "Quarterfinal"
	default:
		return fmt.Sprintf("Round %d", round)
	}
}
