package feed

import (
	"github.com/projectbuddy/projectbuddy/internal/models"
	"gorm.io/gorm"
)

// SocialGraph is everything about a viewer that widens their audience.
type SocialGraph struct {
	ViewerID         string
	ConnectedUserIDs []string
	MemberTeamIDs    []string
	FollowedTeamIDs  []string
}

// TeamIDs is the union of member and followed teams without duplicates.
func (g SocialGraph) TeamIDs() []string {
	return union(g.MemberTeamIDs, g.FollowedTeamIDs)
}

type Audience struct {
	viewerID  string
	connected []string
	teams     []string

	connectedSet map[string]struct{}
	teamSet      map[string]struct{}
}

func NewAudience(graph SocialGraph) Audience {
	connected := union(graph.ConnectedUserIDs, nil)
	teams := graph.TeamIDs()

	return Audience{
		viewerID:     graph.ViewerID,
		connected:    connected,
		teams:        teams,
		connectedSet: toSet(connected),
		teamSet:      toSet(teams),
	}
}

// Anonymous is the audience of a caller without an account: public posts only.
func Anonymous() Audience {
	return Audience{}
}

func (a Audience) ViewerID() string {
	return a.viewerID
}

func (a Audience) IsAnonymous() bool {
	return a.viewerID == ""
}

// Allows reports whether the post is visible to the audience.
func (a Audience) Allows(post *models.Post) bool {
	if post == nil {
		return false
	}

	if a.IsAnonymous() {
		return post.Visibility == models.VisibilityPublic
	}

	if post.AuthorID == a.viewerID {
		return true
	}

	if _, ok := a.connectedSet[post.AuthorID]; ok {
		return true
	}

	if post.TeamID != nil {
		if _, ok := a.teamSet[*post.TeamID]; ok {
			return true
		}
	}

	return post.Visibility == models.VisibilityPublic
}

// Scope restricts a query over the posts table to the audience. All clauses
// are OR-ed into one grouped condition evaluated once per row.
func (a Audience) Scope(tx *gorm.DB) *gorm.DB {
	if a.IsAnonymous() {
		return tx.Where("posts.visibility = ?", models.VisibilityPublic)
	}

	cond := tx.Session(&gorm.Session{NewDB: true}).Where("posts.author_id = ?", a.viewerID)

	if len(a.connected) > 0 {
		cond = cond.Or("posts.author_id IN ?", a.connected)
	}

	if len(a.teams) > 0 {
		cond = cond.Or("posts.team_id IN ?", a.teams)
	}

	cond = cond.Or("posts.visibility = ? AND posts.author_id <> ?", models.VisibilityPublic, a.viewerID)

	return tx.Where(cond)
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))

	for _, list := range [][]string{a, b} {
		for _, id := range list {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}

	return out
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
