package feed

import (
	"strings"

	"github.com/projectbuddy/projectbuddy/internal/models"
	"gorm.io/gorm"
)

// Filter narrows a listing. Zero fields do not constrain.
type Filter struct {
	Type       models.PostType
	AuthorID   string
	TeamID     string
	ProjectID  string
	Hashtag    string
	Visibility models.Visibility
	Search     string
}

func (f Filter) Scope(tx *gorm.DB) *gorm.DB {
	if f.Type != "" {
		tx = tx.Where("posts.type = ?", f.Type)
	}

	if f.AuthorID != "" {
		tx = tx.Where("posts.author_id = ?", f.AuthorID)
	}

	if f.TeamID != "" {
		tx = tx.Where("posts.team_id = ?", f.TeamID)
	}

	if f.ProjectID != "" {
		tx = tx.Where("posts.project_id = ?", f.ProjectID)
	}

	if f.Visibility != "" {
		tx = tx.Where("posts.visibility = ?", f.Visibility)
	}

	if tag := NormalizeHashtag(f.Hashtag); tag != "" {
		tx = tx.Where("EXISTS (SELECT 1 FROM unnest(posts.hashtags) AS tag WHERE tag ILIKE ?)", "%"+tag+"%")
	}

	if search := strings.TrimSpace(f.Search); search != "" {
		tx = tx.Where("posts.content ILIKE ?", "%"+search+"%")
	}

	return tx
}

// Matches is the in-process equivalent of Scope.
func (f Filter) Matches(post *models.Post) bool {
	if f.Type != "" && post.Type != f.Type {
		return false
	}

	if f.AuthorID != "" && post.AuthorID != f.AuthorID {
		return false
	}

	if f.TeamID != "" && (post.TeamID == nil || *post.TeamID != f.TeamID) {
		return false
	}

	if f.ProjectID != "" && (post.ProjectID == nil || *post.ProjectID != f.ProjectID) {
		return false
	}

	if f.Visibility != "" && post.Visibility != f.Visibility {
		return false
	}

	if tag := NormalizeHashtag(f.Hashtag); tag != "" {
		found := false
		for _, candidate := range post.Hashtags {
			if strings.Contains(strings.ToLower(candidate), tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if search := strings.TrimSpace(f.Search); search != "" {
		if !strings.Contains(strings.ToLower(post.Content), strings.ToLower(search)) {
			return false
		}
	}

	return true
}
