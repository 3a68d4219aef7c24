package tickets

import "errors"

// Failure taxonomy for ticket operations. All are recoverable at the
// request boundary; handlers map them to HTTP status codes.
var (
	// ErrUnauthenticated means no resolved owner id reached the service.
	ErrUnauthenticated = errors.New("no authenticated visitor identity")

	// ErrInvalidReference means a submitted id is not well formed.
	ErrInvalidReference = errors.New("malformed identifier")

	// ErrRideNotFound means a ride id resolved to no catalog record.
	ErrRideNotFound = errors.New("ride not found")

	// ErrTicketNotFound covers missing tickets and, deliberately, amend
	// attempts against someone else's ticket, an unbought ticket or a
	// past date. Collapsing those hides whether a foreign ticket id
	// exists at all.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrNoActiveTicket means the visitor has no open draft to buy or
	// add reservations to.
	ErrNoActiveTicket = errors.New("no active ticket")

	// ErrNoTicketForToday means no purchased ticket matches today's date.
	ErrNoTicketForToday = errors.New("no valid ticket for today")

	// ErrDuplicateDraft means a draft is already open for this visitor.
	ErrDuplicateDraft = errors.New("an unpurchased ticket already exists")

	// ErrWriteConflict means a concurrent update won twice in a row;
	// the caller may retry the whole operation.
	ErrWriteConflict = errors.New("ticket changed concurrently, try again")

	// ErrStoreUnavailable means the store did not answer within the
	// configured deadline.
	ErrStoreUnavailable = errors.New("ticket store unavailable")
)
