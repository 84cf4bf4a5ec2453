package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/projectbuddy/projectbuddy/internal/apperr"
	"github.com/projectbuddy/projectbuddy/internal/events"
	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"github.com/projectbuddy/projectbuddy/internal/repository"
)

// memDB is an in-memory stand-in for the database behind the repository
// fakes below. Rows get sequential ids and strictly increasing timestamps.
type memDB struct {
	mu sync.Mutex

	seq   int
	clock time.Time

	users          map[string]*models.User
	connections    map[string]*models.Connection
	teams          map[string]*models.Team
	members        map[string]*models.TeamMember
	follows        map[string]*models.TeamFollow
	requests       map[string]*models.TeamJoinRequest
	projects       map[string]*models.Project
	projectMembers map[string]*models.ProjectMembership
	posts          map[string]*models.Post
	reactions      map[string]*models.Reaction
	comments       map[string]*models.Comment
	shares         map[string]*models.Share
	bookmarks      map[string]*models.Bookmark
	notifications  []*models.Notification
	messages       []*models.Message
}

func newMemDB() *memDB {
	return &memDB{
		clock:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:          map[string]*models.User{},
		connections:    map[string]*models.Connection{},
		teams:          map[string]*models.Team{},
		members:        map[string]*models.TeamMember{},
		follows:        map[string]*models.TeamFollow{},
		requests:       map[string]*models.TeamJoinRequest{},
		projects:       map[string]*models.Project{},
		projectMembers: map[string]*models.ProjectMembership{},
		posts:          map[string]*models.Post{},
		reactions:      map[string]*models.Reaction{},
		comments:       map[string]*models.Comment{},
		shares:         map[string]*models.Share{},
		bookmarks:      map[string]*models.Bookmark{},
	}
}

func (m *memDB) stamp(b *models.Base) {
	m.seq++
	m.clock = m.clock.Add(time.Second)
	if b.ID == "" {
		b.ID = fmt.Sprintf("id-%d", m.seq)
	}
	b.CreatedAt = m.clock
	b.UpdatedAt = m.clock
}

func key(a, b string) string {
	return a + "|" + b
}

func pageOf[T any](items []T, page feed.Page) []T {
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func notFound(entity string) error {
	return apperr.NotFound(entity + " not found")
}

func conflict(entity string) error {
	return apperr.Conflict(entity + " already exists")
}

// users

type fakeUsers struct{ db *memDB }

func (f fakeUsers) Create(_ context.Context, user *models.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	for _, u := range f.db.users {
		if u.Email == user.Email {
			return conflict("User")
		}
	}

	f.db.stamp(&user.Base)
	f.db.users[user.ID] = user
	return nil
}

func (f fakeUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if u, ok := f.db.users[id]; ok {
		return u, nil
	}
	return nil, notFound("User")
}

func (f fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	for _, u := range f.db.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, notFound("User")
}

func (f fakeUsers) Update(_ context.Context, user *models.User, updates map[string]interface{}) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	for column, value := range updates {
		switch column {
		case "name":
			user.Name = value.(string)
		case "email":
			user.Email = value.(string)
		case "headline":
			user.Headline = value.(string)
		case "bio":
			user.Bio = value.(string)
		case "location":
			user.Location = value.(string)
		case "password_hash":
			user.PasswordHash = value.(string)
		}
	}
	return nil
}

func (f fakeUsers) Delete(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	delete(f.db.users, id)
	return nil
}

func (f fakeUsers) Search(_ context.Context, filter repository.UserFilter, page feed.Page) ([]models.User, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var out []models.User
	for _, u := range f.db.users {
		if filter.Query != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return pageOf(out, page), int64(len(out)), nil
}

func (f fakeUsers) Suggestions(_ context.Context, skills, interests, exclude []string, limit int) ([]models.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	skip := map[string]bool{}
	for _, id := range exclude {
		skip[id] = true
	}

	wanted := map[string]bool{}
	for _, s := range append(append([]string{}, skills...), interests...) {
		wanted[s] = true
	}

	var out []models.User
	for _, u := range f.db.users {
		if skip[u.ID] {
			continue
		}
		for _, s := range append(append([]string{}, u.Skills...), u.Interests...) {
			if wanted[s] {
				out = append(out, *u)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// connections

type fakeConnections struct{ db *memDB }

func (f fakeConnections) Create(_ context.Context, conn *models.Connection) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	pair := models.PairKey(conn.SenderID, conn.ReceiverID)
	for _, c := range f.db.connections {
		if c.PairKey == pair {
			return conflict("Connection")
		}
	}

	conn.PairKey = pair
	f.db.stamp(&conn.Base)
	f.db.connections[conn.ID] = conn
	return nil
}

func (f fakeConnections) FindByID(_ context.Context, id string) (*models.Connection, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if c, ok := f.db.connections[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, notFound("Connection")
}

func (f fakeConnections) FindBetween(_ context.Context, a, b string) (*models.Connection, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	pair := models.PairKey(a, b)
	for _, c := range f.db.connections {
		if c.PairKey == pair {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f fakeConnections) Transition(_ context.Context, id string, from, to models.ConnectionStatus) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	c, ok := f.db.connections[id]
	if !ok || c.Status != from {
		return apperr.Conflict("Connection request has already been responded to")
	}
	c.Status = to
	return nil
}

func (f fakeConnections) Delete(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	delete(f.db.connections, id)
	return nil
}

func (f fakeConnections) List(_ context.Context, userID string, query repository.ConnectionQuery, page feed.Page) ([]models.Connection, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var out []models.Connection
	for _, c := range f.db.connections {
		switch query.Direction {
		case repository.DirectionIncoming:
			if c.ReceiverID != userID {
				continue
			}
		case repository.DirectionOutgoing:
			if c.SenderID != userID {
				continue
			}
		default:
			if !c.Involves(userID) {
				continue
			}
		}
		if query.Status != "" && c.Status != query.Status {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return pageOf(out, page), int64(len(out)), nil
}

func (f fakeConnections) RelatedUserIDs(_ context.Context, userID string) ([]string, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var ids []string
	for _, c := range f.db.connections {
		if c.Involves(userID) {
			ids = append(ids, c.Other(userID))
		}
	}
	return ids, nil
}

// social graph

type fakeGraph struct{ db *memDB }

func (f fakeGraph) SocialGraph(_ context.Context, viewerID string) (feed.SocialGraph, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	graph := feed.SocialGraph{ViewerID: viewerID}

	for _, c := range f.db.connections {
		if c.Status == models.ConnectionAccepted && c.Involves(viewerID) {
			graph.ConnectedUserIDs = append(graph.ConnectedUserIDs, c.Other(viewerID))
		}
	}

	for _, m := range f.db.members {
		if m.UserID == viewerID {
			graph.MemberTeamIDs = append(graph.MemberTeamIDs, m.TeamID)
		}
	}

	for _, follow := range f.db.follows {
		if follow.UserID == viewerID {
			graph.FollowedTeamIDs = append(graph.FollowedTeamIDs, follow.TeamID)
		}
	}

	return graph, nil
}

// teams

type fakeTeams struct{ db *memDB }

func (f fakeTeams) countMembers(teamID string) int64 {
	var n int64
	for _, m := range f.db.members {
		if m.TeamID == teamID {
			n++
		}
	}
	return n
}

func (f fakeTeams) Create(_ context.Context, team *models.Team) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	f.db.stamp(&team.Base)
	f.db.teams[team.ID] = team

	owner := &models.TeamMember{TeamID: team.ID, UserID: team.OwnerID, Status: models.MemberAdmin}
	f.db.stamp(&owner.Base)
	f.db.members[key(team.ID, team.OwnerID)] = owner
	team.MemberCount = 1
	return nil
}

func (f fakeTeams) FindByID(_ context.Context, id string) (*models.Team, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	t, ok := f.db.teams[id]
	if !ok {
		return nil, notFound("Team")
	}
	cp := *t
	cp.MemberCount = f.countMembers(id)
	return &cp, nil
}

func (f fakeTeams) Update(_ context.Context, team *models.Team, _ map[string]interface{}) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	stored := *team
	f.db.teams[team.ID] = &stored
	return nil
}

func (f fakeTeams) Delete(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	delete(f.db.teams, id)
	for k, m := range f.db.members {
		if m.TeamID == id {
			delete(f.db.members, k)
		}
	}
	return nil
}

func (f fakeTeams) List(_ context.Context, filter repository.TeamFilter, page feed.Page) ([]models.Team, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var out []models.Team
	for _, t := range f.db.teams {
		_, member := f.db.members[key(t.ID, filter.ViewerID)]
		if t.Visibility != models.TeamPublic && !member {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return pageOf(out, page), int64(len(out)), nil
}

func (f fakeTeams) FindMember(_ context.Context, teamID, userID string) (*models.TeamMember, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if m, ok := f.db.members[key(teamID, userID)]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (f fakeTeams) ListMembers(_ context.Context, teamID string, page feed.Page) ([]models.TeamMember, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var out []models.TeamMember
	for _, m := range f.db.members {
		if m.TeamID == teamID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	return pageOf(out, page), int64(len(out)), nil
}

func (f fakeTeams) MemberIDs(_ context.Context, teamID string) ([]string, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var ids []string
	for _, m := range f.db.members {
		if m.TeamID == teamID {
			ids = append(ids, m.UserID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (f fakeTeams) ManagerIDs(_ context.Context, teamID string) ([]string, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var ids []string
	for _, m := range f.db.members {
		if m.TeamID == teamID && (m.Status == models.MemberAdmin || m.Status == models.MemberModerator) {
			ids = append(ids, m.UserID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (f fakeTeams) CountMembers(_ context.Context, teamID string) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	return f.countMembers(teamID), nil
}

func (f fakeTeams) addMember(member *models.TeamMember) error {
	team, ok := f.db.teams[member.TeamID]
	if !ok {
		return notFound("Team")
	}

	if _, exists := f.db.members[key(member.TeamID, member.UserID)]; exists {
		return conflict("Team member")
	}

	if team.MaxMembers > 0 && f.countMembers(team.ID) >= int64(team.MaxMembers) {
		return repository.ErrTeamFull
	}

	f.db.stamp(&member.Base)
	f.db.members[key(member.TeamID, member.UserID)] = member
	return nil
}

func (f fakeTeams) AddMember(_ context.Context, member *models.TeamMember) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	return f.addMember(member)
}

func (f fakeTeams) UpdateMemberStatus(_ context.Context, teamID, userID string, status models.MemberStatus) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	m, ok := f.db.members[key(teamID, userID)]
	if !ok {
		return notFound("Team member")
	}
	m.Status = status
	return nil
}

func (f fakeTeams) RemoveMember(_ context.Context, teamID, userID string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if _, ok := f.db.members[key(teamID, userID)]; !ok {
		return notFound("Team member")
	}
	delete(f.db.members, key(teamID, userID))
	return nil
}

func (f fakeTeams) Follow(_ context.Context, teamID, userID string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if _, ok := f.db.follows[key(teamID, userID)]; ok {
		return conflict("Team follow")
	}
	follow := &models.TeamFollow{TeamID: teamID, UserID: userID}
	f.db.stamp(&follow.Base)
	f.db.follows[key(teamID, userID)] = follow
	return nil
}

func (f fakeTeams) Unfollow(_ context.Context, teamID, userID string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if _, ok := f.db.follows[key(teamID, userID)]; !ok {
		return notFound("Team follow")
	}
	delete(f.db.follows, key(teamID, userID))
	return nil
}

func (f fakeTeams) CreateJoinRequest(_ context.Context, req *models.TeamJoinRequest) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	f.db.stamp(&req.Base)
	f.db.requests[req.ID] = req
	return nil
}

func (f fakeTeams) FindJoinRequest(_ context.Context, id string) (*models.TeamJoinRequest, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if r, ok := f.db.requests[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, notFound("Join request")
}

func (f fakeTeams) FindPendingJoinRequest(_ context.Context, teamID, userID string) (*models.TeamJoinRequest, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	for _, r := range f.db.requests {
		if r.TeamID == teamID && r.UserID == userID && r.Status == models.JoinRequestPending {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f fakeTeams) ListJoinRequests(_ context.Context, teamID string, status models.JoinRequestStatus, page feed.Page) ([]models.TeamJoinRequest, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var out []models.TeamJoinRequest
	for _, r := range f.db.requests {
		if r.TeamID == teamID && (status == "" || r.Status == status) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	return pageOf(out, page), int64(len(out)), nil
}

func (f fakeTeams) ApproveJoinRequest(_ context.Context, req *models.TeamJoinRequest, reviewerID string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	stored, ok := f.db.requests[req.ID]
	if !ok || stored.Status != models.JoinRequestPending {
		return apperr.Conflict("Join request has already been reviewed")
	}

	if err := f.addMember(&models.TeamMember{TeamID: req.TeamID, UserID: req.UserID, Status: models.MemberMember}); err != nil {
		return err
	}

	stored.Status = models.JoinRequestApproved
	stored.ReviewedBy = &reviewerID
	return nil
}

func (f fakeTeams) RejectJoinRequest(_ context.Context, req *models.TeamJoinRequest, reviewerID string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	stored, ok := f.db.requests[req.ID]
	if !ok || stored.Status != models.JoinRequestPending {
		return apperr.Conflict("Join request has already been reviewed")
	}

	stored.Status = models.JoinRequestRejected
	stored.ReviewedBy = &reviewerID
	return nil
}

// projects

type fakeProjects struct{ db *memDB }

func (f fakeProjects) Create(_ context.Context, project *models.Project) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	f.db.stamp(&project.Base)
	f.db.projects[project.ID] = project

	owner := &models.ProjectMembership{ProjectID: project.ID, UserID: project.OwnerID, Role: models.ProjectOwner}
	f.db.stamp(&owner.Base)
	f.db.projectMembers[key(project.ID, project.OwnerID)] = owner
	return nil
}

func (f fakeProjects) FindByID(_ context.Context, id string) (*models.Project, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if p, ok := f.db.projects[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, notFound("Project")
}

func (f fakeProjects) Update(_ context.Context, project *models.Project, updates map[string]interface{}) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	stored, ok := f.db.projects[project.ID]
	if !ok {
		return notFound("Project")
	}

	for column, value := range updates {
		switch column {
		case "name":
			stored.Name = value.(string)
		case "description":
			stored.Description = value.(string)
		case "status":
			stored.Status = value.(models.ProjectStatus)
		case "is_public":
			stored.IsPublic = value.(bool)
		}
	}

	*project = *stored
	return nil
}

func (f fakeProjects) Delete(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	delete(f.db.projects, id)
	return nil
}

func (f fakeProjects) List(_ context.Context, filter repository.ProjectFilter, page feed.Page) ([]models.Project, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var out []models.Project
	for _, p := range f.db.projects {
		_, member := f.db.projectMembers[key(p.ID, filter.ViewerID)]
		if !p.IsPublic && !member {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return pageOf(out, page), int64(len(out)), nil
}

func (f fakeProjects) FindMember(_ context.Context, projectID, userID string) (*models.ProjectMembership, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if m, ok := f.db.projectMembers[key(projectID, userID)]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (f fakeProjects) ListMembers(_ context.Context, projectID string) ([]models.ProjectMembership, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var out []models.ProjectMembership
	for _, m := range f.db.projectMembers {
		if m.ProjectID == projectID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f fakeProjects) AddMember(_ context.Context, member *models.ProjectMembership) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if _, ok := f.db.projectMembers[key(member.ProjectID, member.UserID)]; ok {
		return conflict("Project member")
	}
	f.db.stamp(&member.Base)
	f.db.projectMembers[key(member.ProjectID, member.UserID)] = member
	return nil
}

func (f fakeProjects) UpdateMemberRole(_ context.Context, projectID, userID string, role models.ProjectRole) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	m, ok := f.db.projectMembers[key(projectID, userID)]
	if !ok {
		return notFound("Project member")
	}
	m.Role = role
	return nil
}

func (f fakeProjects) RemoveMember(_ context.Context, projectID, userID string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if _, ok := f.db.projectMembers[key(projectID, userID)]; !ok {
		return notFound("Project member")
	}
	delete(f.db.projectMembers, key(projectID, userID))
	return nil
}

// posts

type fakePosts struct{ db *memDB }

func (f fakePosts) Create(_ context.Context, post *models.Post) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	f.db.stamp(&post.Base)
	post.Author = f.db.users[post.AuthorID]
	f.db.posts[post.ID] = post
	return nil
}

func (f fakePosts) FindByID(_ context.Context, id string) (*models.Post, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if p, ok := f.db.posts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, notFound("Post")
}

func (f fakePosts) Update(_ context.Context, post *models.Post, updates map[string]interface{}) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	stored, ok := f.db.posts[post.ID]
	if !ok {
		return notFound("Post")
	}

	for column, value := range updates {
		switch column {
		case "content":
			stored.Content = value.(string)
		case "visibility":
			stored.Visibility = value.(models.Visibility)
		case "type":
			stored.Type = value.(models.PostType)
		}
	}

	*post = *stored
	return nil
}

func (f fakePosts) Delete(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	delete(f.db.posts, id)
	return nil
}

func (f fakePosts) Feed(_ context.Context, audience feed.Audience, filter feed.Filter, page feed.Page) (feed.Result, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var out []models.Post
	for _, p := range f.db.posts {
		if audience.Allows(p) && filter.Matches(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return feed.Result{Items: pageOf(out, page), Total: int64(len(out))}, nil
}

func (f fakePosts) Trending(_ context.Context, since time.Time, page feed.Page) (feed.Result, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var out []models.Post
	for _, p := range f.db.posts {
		if !p.CreatedAt.Before(since) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.LikesCount != b.LikesCount:
			return a.LikesCount > b.LikesCount
		case a.CommentsCount != b.CommentsCount:
			return a.CommentsCount > b.CommentsCount
		case a.SharesCount != b.SharesCount:
			return a.SharesCount > b.SharesCount
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})

	return feed.Result{Items: pageOf(out, page), Total: int64(len(out))}, nil
}

// interactions

type fakeInteractions struct{ db *memDB }

func (f fakeInteractions) recount(postID string) {
	post, ok := f.db.posts[postID]
	if !ok {
		return
	}

	post.LikesCount, post.CommentsCount, post.SharesCount = 0, 0, 0
	for _, r := range f.db.reactions {
		if r.PostID == postID {
			post.LikesCount++
		}
	}
	for _, c := range f.db.comments {
		if c.PostID == postID {
			post.CommentsCount++
		}
	}
	for _, s := range f.db.shares {
		if s.PostID == postID {
			post.SharesCount++
		}
	}
}

func (f fakeInteractions) React(_ context.Context, reaction *models.Reaction) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	k := key(reaction.UserID, reaction.PostID)
	if existing, ok := f.db.reactions[k]; ok {
		existing.Type = reaction.Type
		return false, nil
	}

	f.db.stamp(&reaction.Base)
	f.db.reactions[k] = reaction
	f.recount(reaction.PostID)
	return true, nil
}

func (f fakeInteractions) Unreact(_ context.Context, userID, postID string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if _, ok := f.db.reactions[key(userID, postID)]; !ok {
		return notFound("Reaction")
	}
	delete(f.db.reactions, key(userID, postID))
	f.recount(postID)
	return nil
}

func (f fakeInteractions) AddComment(_ context.Context, comment *models.Comment) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	f.db.stamp(&comment.Base)
	f.db.comments[comment.ID] = comment
	f.recount(comment.PostID)
	return nil
}

func (f fakeInteractions) FindComment(_ context.Context, id string) (*models.Comment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if c, ok := f.db.comments[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, notFound("Comment")
}

func (f fakeInteractions) ListComments(_ context.Context, postID string, page feed.Page) ([]models.Comment, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var out []models.Comment
	for _, c := range f.db.comments {
		if c.PostID == postID && c.ParentID == nil {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return pageOf(out, page), int64(len(out)), nil
}

func (f fakeInteractions) DeleteComment(_ context.Context, comment *models.Comment) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	for id, c := range f.db.comments {
		if id == comment.ID || (c.ParentID != nil && *c.ParentID == comment.ID) {
			delete(f.db.comments, id)
		}
	}
	f.recount(comment.PostID)
	return nil
}

func (f fakeInteractions) Share(_ context.Context, share *models.Share) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	k := key(share.UserID, share.PostID)
	if _, ok := f.db.shares[k]; ok {
		return conflict("Share")
	}
	f.db.stamp(&share.Base)
	f.db.shares[k] = share
	f.recount(share.PostID)
	return nil
}

func (f fakeInteractions) Bookmark(_ context.Context, bookmark *models.Bookmark) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	k := key(bookmark.UserID, bookmark.PostID)
	if _, ok := f.db.bookmarks[k]; ok {
		return conflict("Bookmark")
	}
	f.db.stamp(&bookmark.Base)
	f.db.bookmarks[k] = bookmark
	return nil
}

func (f fakeInteractions) Unbookmark(_ context.Context, userID, postID string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if _, ok := f.db.bookmarks[key(userID, postID)]; !ok {
		return notFound("Bookmark")
	}
	delete(f.db.bookmarks, key(userID, postID))
	return nil
}

func (f fakeInteractions) ListBookmarks(_ context.Context, userID string, page feed.Page) ([]models.Bookmark, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var out []models.Bookmark
	for _, b := range f.db.bookmarks {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return pageOf(out, page), int64(len(out)), nil
}

// notifications

type fakeNotifications struct{ db *memDB }

func (f fakeNotifications) CreateBatch(_ context.Context, batch []*models.Notification) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	for _, n := range batch {
		f.db.stamp(&n.Base)
		f.db.notifications = append(f.db.notifications, n)
	}
	return nil
}

func (f fakeNotifications) List(_ context.Context, userID string, unreadOnly bool, page feed.Page) ([]models.Notification, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var out []models.Notification
	for i := len(f.db.notifications) - 1; i >= 0; i-- {
		n := f.db.notifications[i]
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out = append(out, *n)
		}
	}
	return pageOf(out, page), int64(len(out)), nil
}

func (f fakeNotifications) CountUnread(_ context.Context, userID string) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var n int64
	for _, notification := range f.db.notifications {
		if notification.UserID == userID && !notification.Read {
			n++
		}
	}
	return n, nil
}

func (f fakeNotifications) MarkRead(_ context.Context, userID, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	for _, n := range f.db.notifications {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return notFound("Notification")
}

func (f fakeNotifications) MarkAllRead(_ context.Context, userID string) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var changed int64
	for _, n := range f.db.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			changed++
		}
	}
	return changed, nil
}

func (f fakeNotifications) Delete(_ context.Context, userID, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	for i, n := range f.db.notifications {
		if n.ID == id && n.UserID == userID {
			f.db.notifications = append(f.db.notifications[:i], f.db.notifications[i+1:]...)
			return nil
		}
	}
	return notFound("Notification")
}

// messages

type fakeMessages struct{ db *memDB }

func (f fakeMessages) Create(_ context.Context, msg *models.Message) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	f.db.stamp(&msg.Base)
	f.db.messages = append(f.db.messages, msg)
	return nil
}

func (f fakeMessages) Thread(_ context.Context, a, b string, page feed.Page) ([]models.Message, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var out []models.Message
	for i := len(f.db.messages) - 1; i >= 0; i-- {
		m := f.db.messages[i]
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, *m)
		}
	}
	return pageOf(out, page), int64(len(out)), nil
}

func (f fakeMessages) MarkThreadRead(_ context.Context, receiverID, senderID string) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var changed int64
	now := f.db.clock
	for _, m := range f.db.messages {
		if m.ReceiverID == receiverID && m.SenderID == senderID && m.ReadAt == nil {
			m.ReadAt = &now
			changed++
		}
	}
	return changed, nil
}

func (f fakeMessages) Conversations(_ context.Context, userID string) ([]models.Conversation, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	byUser := map[string]*models.Conversation{}
	var order []string

	for i := len(f.db.messages) - 1; i >= 0; i-- {
		m := f.db.messages[i]
		if m.SenderID != userID && m.ReceiverID != userID {
			continue
		}

		other := m.SenderID
		if other == userID {
			other = m.ReceiverID
		}

		conv, ok := byUser[other]
		if !ok {
			conv = &models.Conversation{UserID: other, LastMessage: *m, UpdatedAt: m.CreatedAt}
			byUser[other] = conv
			order = append(order, other)
		}

		if m.ReceiverID == userID && m.ReadAt == nil {
			conv.UnreadCount++
		}
	}

	out := make([]models.Conversation, 0, len(order))
	for _, id := range order {
		out = append(out, *byUser[id])
	}
	return out, nil
}

// publisher

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evts ...events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, evts...)
	return p.err
}

func (p *recordingPublisher) ofType(kind models.NotificationType) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []events.Event
	for _, e := range p.events {
		if e.Type == kind {
			out = append(out, e)
		}
	}
	return out
}
