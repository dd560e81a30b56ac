// Package authz decides whether a caller may perform an action on an entity.
//
// Every function is pure: it looks only at the caller id, the entity snapshot
// and a membership fact the caller already resolved, and it never touches a
// store. Checks run in a fixed order and the first failure wins. A snapshot
// may be slightly stale; the services re-validate state with a conditional
// write when they persist.
package authz

import (
	"github.com/yukikurage/earth-fighter-api/internal/models"
)

// CanDeleteUser allows users to delete only themselves.
func CanDeleteUser(callerID, targetID uint64) Decision {
	if callerID != targetID {
		return Deny(ReasonForbidden, "only the user themself can delete this account")
	}
	return Allow()
}

// CanRenameUser allows users to rename only themselves. Name uniqueness is
// checked by the store and reported separately.
func CanRenameUser(callerID, targetID uint64) Decision {
	if callerID != targetID {
		return Deny(ReasonForbidden, "only the user themself can change this username")
	}
	return Allow()
}

// CanChangePassword allows users to change only their own password.
func CanChangePassword(callerID, targetID uint64) Decision {
	if callerID != targetID {
		return Deny(ReasonForbidden, "only the user themself can change this password")
	}
	return Allow()
}

// CanReadFullUserInfo shapes responses rather than denying: other callers
// still see the id and username.
func CanReadFullUserInfo(callerID, targetID uint64) bool {
	return callerID == targetID
}

// CanDeleteOrganization allows only the creator to delete an organization.
func CanDeleteOrganization(callerID uint64, org *models.Organization) Decision {
	if org == nil || org.IsDeleted() {
		return Deny(ReasonNotFound, "organization not found")
	}
	if org.CreatorID != callerID {
		return Deny(ReasonForbidden, "only the organization creator can delete it")
	}
	return Allow()
}

// CanJoinOrganization checks existence, then membership, then the invite code.
func CanJoinOrganization(callerID uint64, org *models.Organization, isMember bool, inviteCode string) Decision {
	if org == nil || org.IsDeleted() {
		return Deny(ReasonNotFound, "organization not found")
	}
	if isMember {
		return Deny(ReasonConflict, "user is already a member of this organization")
	}
	if inviteCode != org.InviteCode {
		return Deny(ReasonForbidden, "invite code does not match")
	}
	return Allow()
}

// CanLeaveOrganization requires the organization to exist and the caller to
// be a member. The creator is allowed to leave.
func CanLeaveOrganization(callerID uint64, org *models.Organization, isMember bool) Decision {
	if org == nil || org.IsDeleted() {
		return Deny(ReasonNotFound, "organization not found")
	}
	if !isMember {
		return Deny(ReasonForbidden, "user is not a member of this organization")
	}
	return Allow()
}

// CanViewOrganization requires membership to read organization details.
func CanViewOrganization(callerID uint64, org *models.Organization, isMember bool) Decision {
	if org == nil || org.IsDeleted() {
		return Deny(ReasonNotFound, "organization not found")
	}
	if !isMember {
		return Deny(ReasonForbidden, "user is not a member of this organization")
	}
	return Allow()
}

// CanPublishTask requires membership of the target organization.
func CanPublishTask(callerID, organizationID uint64, isMember bool) Decision {
	if !isMember {
		return Deny(ReasonForbidden, "only organization members can publish tasks")
	}
	return Allow()
}

// CanViewTask requires membership of the task's organization.
func CanViewTask(callerID uint64, task *models.Task, isMember bool) Decision {
	if task == nil {
		return Deny(ReasonNotFound, "task not found")
	}
	if !isMember {
		return Deny(ReasonForbidden, "only organization members can view this task")
	}
	return Allow()
}

// CanAcceptTask requires membership and a pending task.
func CanAcceptTask(callerID uint64, task *models.Task, isMember bool) Decision {
	if task == nil {
		return Deny(ReasonNotFound, "task not found")
	}
	if !isMember {
		return Deny(ReasonForbidden, "only members of the task's organization can accept it")
	}
	if task.Status != models.TaskStatusPending {
		return Deny(ReasonConflict, "only pending tasks can be accepted")
	}
	return Allow()
}

// CanAbandonTask requires the caller to be the current receiver of a task
// that is in progress or expired.
func CanAbandonTask(callerID uint64, task *models.Task) Decision {
	if task == nil {
		return Deny(ReasonNotFound, "task not found")
	}
	if !task.IsReceiver(callerID) {
		return Deny(ReasonForbidden, "only the task receiver can abandon it")
	}
	if task.Status != models.TaskStatusInProgress && task.Status != models.TaskStatusExpired {
		return Deny(ReasonConflict, "only in-progress or expired tasks can be abandoned")
	}
	return Allow()
}

// CanSubmitTask requires the caller to be the receiver of an in-progress task.
func CanSubmitTask(callerID uint64, task *models.Task) Decision {
	if task == nil {
		return Deny(ReasonNotFound, "task not found")
	}
	if !task.IsReceiver(callerID) {
		return Deny(ReasonForbidden, "only the task receiver can submit it")
	}
	if task.Status != models.TaskStatusInProgress {
		return Deny(ReasonConflict, "only in-progress tasks can be submitted")
	}
	return Allow()
}

// CanConfirmTask requires the caller to be the publisher of a submitted task.
func CanConfirmTask(callerID uint64, task *models.Task) Decision {
	if task == nil {
		return Deny(ReasonNotFound, "task not found")
	}
	if task.PublisherID != callerID {
		return Deny(ReasonForbidden, "only the task publisher can confirm it")
	}
	if task.Status != models.TaskStatusToBeConfirmed {
		return Deny(ReasonConflict, "only tasks waiting for confirmation can be confirmed")
	}
	return Allow()
}

// CanDeleteTask allows only the publisher to delete a task.
func CanDeleteTask(callerID uint64, task *models.Task) Decision {
	if task == nil {
		return Deny(ReasonNotFound, "task not found")
	}
	if task.PublisherID != callerID {
		return Deny(ReasonForbidden, "only the task publisher can delete it")
	}
	return Allow()
}
