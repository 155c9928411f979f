package engine

import "github.com/google/uuid"

// Notifier is the outbound live-update sink. Implementations must be
// fire-and-forget: a failed delivery never fails the result transaction.
type Notifier interface {
	MatchUpdated(tournamentID, matchID uuid.UUID)
	BracketUpdated(tournamentID uuid.UUID)
}

type noopNotifier struct{}

func (noopNotifier) MatchUpdated(uuid.UUID, uuid.UUID) {}
func (noopNotifier) BracketUpdated(uuid.UUID)          {}
