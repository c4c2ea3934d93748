package seminar

import (
	"github.com/eic-cefet/seminarios-v2-sub001/core/user"
)

// Action is an operation gated by the seminar access policy.
type Action string

const (
	ActionView               Action = "view"
	ActionCreate             Action = "create"
	ActionUpdate             Action = "update"
	ActionDelete             Action = "delete"
	ActionManagePresenceLink Action = "manage-presence-link"
)

// CanAccess decides whether usr may perform action on sem.
// Admins may do anything. Teachers may always create; any other action is
// allowed only on seminars they created. Everyone else is denied.
// Unauthenticated requests never reach this policy; they are rejected by the
// auth middleware first.
func CanAccess(usr user.User, sem Seminar, action Action) bool {
	switch {
	case usr.IsAdmin():
		return true
	case usr.IsTeacher():
		if action == ActionCreate {
			return true
		}
		return usr.ID != "" && sem.CreatedBy == usr.ID
	}
	return false
}
