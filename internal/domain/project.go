package domain

import "github.com/spec-kit/taskboard-console/internal/auth"

// Project is a board owned by a manager (its moderator).
type Project struct {
	ID                      string   `json:"id"`
	Name                    string   `json:"project"`
	Description             string   `json:"description"`
	Moderator               string   `json:"moderator"`
	EstimatedCompletionDate string   `json:"estimated_completion_date,omitempty"`
	Members                 []string `json:"members"`
	MinMembers              int      `json:"min_members"`
	MaxMembers              int      `json:"max_members"`
	CurrentMemberCount      int      `json:"current_member_count"`
}

// Resource exposes the ownership fields checked by the policy.
func (p Project) Resource() auth.Resource {
	return auth.Resource{CreatorID: p.Moderator, MemberIDs: p.Members}
}

// Full reports whether no more members can join.
func (p Project) Full() bool {
	return p.MaxMembers > 0 && len(p.Members) >= p.MaxMembers
}
