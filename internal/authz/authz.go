// Package authz is the single place that decides what a user may do to a team
// or a project. Role grants live in a casbin RBAC model; the structural rules
// around ownership (the owner is never removed or re-roled, anyone may leave)
// are applied on top.
package authz

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/projectbuddy/projectbuddy/internal/apperr"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Grants: owner, ADMIN and MODERATOR manage a team, only the owner deletes it.
// Project owner and ADMIN manage a project.
const rbacPolicy = `
g, team:owner, team:manager
g, team:ADMIN, team:manager
g, team:MODERATOR, team:manager
p, team:manager, team, update
p, team:manager, team, invite
p, team:manager, team, remove_member
p, team:manager, team, change_role
p, team:manager, team, review_requests
p, team:owner, team, delete

g, project:owner, project:manager
g, project:OWNER, project:manager
g, project:ADMIN, project:manager
p, project:manager, project, update
p, project:manager, project, delete
p, project:manager, project, invite
p, project:manager, project, change_role
p, project:manager, project, remove_member
`

type Kind string

const (
	KindTeam    Kind = "team"
	KindProject Kind = "project"
)

type Capability string

const (
	Update         Capability = "update"
	Delete         Capability = "delete"
	Invite         Capability = "invite"
	RemoveMember   Capability = "remove_member"
	ChangeRole     Capability = "change_role"
	ReviewRequests Capability = "review_requests"
)

// Resource describes a team or project from the actor's point of view.
// ActorRole is the actor's membership status or role, empty when the actor is
// not a member.
type Resource struct {
	Kind      Kind
	OwnerID   string
	ActorRole string
}

type Policy struct {
	enforcer *casbin.SyncedEnforcer
}

func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := loadPolicy(enforcer, rbacPolicy); err != nil {
		return nil, err
	}

	return &Policy{enforcer: enforcer}, nil
}

// MustPolicy is NewPolicy for wiring code and tests where the embedded policy
// cannot fail.
func MustPolicy() *Policy {
	p, err := NewPolicy()
	if err != nil {
		panic(err)
	}
	return p
}

func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch {
		case parts[0] == "p" && len(parts) == 4:
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", parts, err)
			}
		case parts[0] == "g" && len(parts) == 3:
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", parts, err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}
	return nil
}

func subject(actorID string, res Resource) string {
	switch {
	case actorID != "" && actorID == res.OwnerID:
		return string(res.Kind) + ":owner"
	case res.ActorRole != "":
		return string(res.Kind) + ":" + res.ActorRole
	default:
		return string(res.Kind) + ":guest"
	}
}

// Can reports whether actorID holds capability on res.
func (p *Policy) Can(actorID string, res Resource, capability Capability) bool {
	allowed, err := p.enforcer.Enforce(subject(actorID, res), string(res.Kind), string(capability))
	if err != nil {
		return false
	}
	return allowed
}

// Check is Can returning a Forbidden error with message when denied.
func (p *Policy) Check(actorID string, res Resource, capability Capability, message string) error {
	if p.Can(actorID, res, capability) {
		return nil
	}
	return apperr.Forbidden(message)
}

// CheckRemoval decides whether actorID may remove targetID from res. The
// owner can never be removed; anyone else may always remove themselves.
func (p *Policy) CheckRemoval(actorID, targetID string, res Resource) error {
	if targetID == res.OwnerID {
		return apperr.Forbidden(fmt.Sprintf("The %s owner cannot be removed", res.Kind))
	}

	if actorID == targetID {
		return nil
	}

	return p.Check(actorID, res, RemoveMember, fmt.Sprintf("You do not have permission to remove members from this %s", res.Kind))
}

// CheckRoleChange decides whether actorID may change targetID's role. The
// owner's role is fixed.
func (p *Policy) CheckRoleChange(actorID, targetID string, res Resource) error {
	if targetID == res.OwnerID {
		return apperr.Forbidden(fmt.Sprintf("The %s owner's role cannot be changed", res.Kind))
	}

	return p.Check(actorID, res, ChangeRole, fmt.Sprintf("You do not have permission to change roles in this %s", res.Kind))
}
