// Package domain holds the participant state machine and event lifecycle
// rules. Nothing here touches storage: stores load a consistent snapshot
// under a lock, ask these functions for a decision and write the result in
// the same transaction.
package domain

import (
	"fmt"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/apperr"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
)

// RerequestPolicy decides whether a user with an earlier booking on an
// event may file a new join request.
type RerequestPolicy string

const (
	// RerequestAfterCancel allows a new request once the previous record is
	// cancelled. A rejected record keeps blocking.
	RerequestAfterCancel RerequestPolicy = "after_cancel"
	// RerequestNever blocks any repeat request.
	RerequestNever RerequestPolicy = "never"
)

func ParseRerequestPolicy(s string) (RerequestPolicy, error) {
	switch p := RerequestPolicy(s); p {
	case RerequestAfterCancel, RerequestNever:
		return p, nil
	case "":
		return RerequestAfterCancel, nil
	}
	return "", fmt.Errorf("unknown re-request policy %q", s)
}

// PlayerCount derives the visible player count: the host plus every
// accepted participant.
func PlayerCount(accepted int) int {
	return 1 + accepted
}

// CheckJoinRequest validates the none -> requested transition. history is
// every booking the user has for the event, in any status.
func CheckJoinRequest(ev *model.Event, userID string, accepted int, history []model.Booking, policy RerequestPolicy) error {
	if userID == ev.HostID {
		return apperr.Forbidden("the host cannot request to join their own event")
	}
	if ev.Status != model.EventPublished && ev.Status != model.EventFull {
		return apperr.ErrEventNotOpen
	}
	for _, b := range history {
		if b.Status != model.BookingCancelled || policy == RerequestNever {
			return apperr.ErrDuplicateRequest
		}
	}
	if PlayerCount(accepted) >= ev.MaxPlayers {
		return apperr.ErrEventFull
	}
	return nil
}

// ApplyDecision validates moving b to status to on behalf of actorID and
// returns the change in accepted count (+1, 0 or -1).
//
// requested -> accepted and requested -> rejected belong to the host;
// accepted -> cancelled belongs to the booking's owner. Capacity is
// re-checked here because the caller holds the event lock.
func ApplyDecision(ev *model.Event, b *model.Booking, actorID string, to model.BookingStatus, accepted int) (int, error) {
	switch {
	case b.Status == model.BookingRequested && to == model.BookingAccepted:
		if actorID != ev.HostID {
			return 0, apperr.Forbidden("only the host can accept requests")
		}
		if ev.Status.Terminal() {
			return 0, apperr.ErrEventNotOpen
		}
		if PlayerCount(accepted) >= ev.MaxPlayers {
			return 0, apperr.ErrEventFull
		}
		return 1, nil

	case b.Status == model.BookingRequested && to == model.BookingRejected:
		if actorID != ev.HostID {
			return 0, apperr.Forbidden("only the host can reject requests")
		}
		return 0, nil

	case b.Status == model.BookingAccepted && to == model.BookingCancelled:
		if actorID != b.UserID {
			return 0, apperr.Forbidden("only the participant can cancel their booking")
		}
		if accepted <= 0 {
			// The snapshot disagrees with the record; refuse rather than
			// let the count go below the host-only baseline.
			return 0, fmt.Errorf("booking %s is accepted but accepted count is %d", b.ID, accepted)
		}
		return -1, nil
	}

	if actorID != ev.HostID && actorID != b.UserID {
		return 0, apperr.Forbidden("you cannot change this booking")
	}
	return 0, &apperr.Error{
		Kind:    apperr.KindConflict,
		Code:    apperr.ErrInvalidTransition.Code,
		Message: fmt.Sprintf("cannot move booking from %s to %s", b.Status, to),
	}
}
