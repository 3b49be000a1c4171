package teams

import "errors"

// ErrNotFound is returned when a team, role, owner, user or invite does not
// exist. "Team has no roles" and "team has no owner" deliberately collapse
// into this one error kind.
var ErrNotFound = errors.New("not found")

// ErrInviteNotAllowed is returned when a team on the free tier tries to
// create an invite.
var ErrInviteNotAllowed = errors.New("the team plan does not allow invites")
