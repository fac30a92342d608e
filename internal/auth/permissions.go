package auth

import "slices"

// Resource is the ownership view of a project or task.
type Resource struct {
	CreatorID string
	MemberIDs []string
}

// CanActOn is the ownership predicate: managers may act on anything, other
// authenticated callers only on resources they created or are members of.
func CanActOn(p Principal, r Resource) bool {
	if HasRole(p, RoleManager) {
		return true
	}
	if !HasRole(p, RoleUser) {
		return false
	}
	subject := p.GetSubjectID()
	if subject == "" {
		return false
	}
	return r.CreatorID == subject || slices.Contains(r.MemberIDs, subject)
}

// CanUpdateTaskStatus guards task status mutation.
func CanUpdateTaskStatus(p Principal, task Resource) bool {
	return CanActOn(p, task)
}

// PermissionSet is the static capability table for a principal.
type PermissionSet struct {
	ViewProjects   bool `json:"view_projects"`
	CreateProjects bool `json:"create_projects"`
	EditProjects   bool `json:"edit_projects"`
	DeleteProjects bool `json:"delete_projects"`
	ManageMembers  bool `json:"manage_members"`
	ViewTasks      bool `json:"view_tasks"`
	CreateTasks    bool `json:"create_tasks"`
	EditTasks      bool `json:"edit_tasks"`
	DeleteTasks    bool `json:"delete_tasks"`
	AssignTasks    bool `json:"assign_tasks"`
	ViewUsers      bool `json:"view_users"`
	ManageUsers    bool `json:"manage_users"`
}

// Permissions derives the capability table from HasRole alone.
func Permissions(p Principal) PermissionSet {
	manager := HasRole(p, RoleManager)
	user := HasRole(p, RoleUser)
	return PermissionSet{
		ViewProjects:   user,
		CreateProjects: manager,
		EditProjects:   manager,
		DeleteProjects: manager,
		ManageMembers:  manager,
		ViewTasks:      user,
		CreateTasks:    manager,
		EditTasks:      manager,
		DeleteTasks:    manager,
		AssignTasks:    manager,
		ViewUsers:      user,
		ManageUsers:    manager,
	}
}
