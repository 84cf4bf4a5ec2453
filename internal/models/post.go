package models

import "github.com/lib/pq"

type Visibility string

const (
	VisibilityPublic      Visibility = "public"
	VisibilityConnections Visibility = "connections"
	VisibilityTeam        Visibility = "team"
	VisibilityProject     Visibility = "project"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityConnections, VisibilityTeam, VisibilityProject:
		return true
	}
	return false
}

type PostType string

const (
	PostGeneral       PostType = "general"
	PostProjectUpdate PostType = "project_update"
	PostAchievement   PostType = "achievement"
	PostQuestion      PostType = "question"
	PostJob           PostType = "job"
)

func (t PostType) Valid() bool {
	switch t {
	case PostGeneral, PostProjectUpdate, PostAchievement, PostQuestion, PostJob:
		return true
	}
	return false
}

// Post counters are derived from the reactions, comments and shares tables
// and are only ever written by the statement that recomputes them.
type Post struct {
	Base

	AuthorID      string         `gorm:"type:uuid;not null;index" json:"authorId"`
	TeamID        *string        `gorm:"type:uuid;index" json:"teamId,omitempty"`
	ProjectID     *string        `gorm:"type:uuid;index" json:"projectId,omitempty"`
	Type          PostType       `gorm:"type:varchar(32);not null;index" json:"type"`
	Content       string         `gorm:"type:text;not null" json:"content"`
	Hashtags      pq.StringArray `gorm:"type:text[]" json:"hashtags"`
	Visibility    Visibility     `gorm:"type:varchar(16);not null;index" json:"visibility"`
	LikesCount    int            `gorm:"not null;default:0" json:"likesCount"`
	CommentsCount int            `gorm:"not null;default:0" json:"commentsCount"`
	SharesCount   int            `gorm:"not null;default:0" json:"sharesCount"`

	// Relationships
	Author  *User    `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"author,omitempty"`
	Team    *Team    `gorm:"foreignKey:TeamID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"team,omitempty"`
	Project *Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}

type ReactionType string

const (
	ReactionLike       ReactionType = "like"
	ReactionLove       ReactionType = "love"
	ReactionCelebrate  ReactionType = "celebrate"
	ReactionSupport    ReactionType = "support"
	ReactionInsightful ReactionType = "insightful"
)

func (t ReactionType) Valid() bool {
	switch t {
	case ReactionLike, ReactionLove, ReactionCelebrate, ReactionSupport, ReactionInsightful:
		return true
	}
	return false
}

type Reaction struct {
	Base

	UserID string       `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_user_post" json:"userId"`
	PostID string       `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_user_post;index" json:"postId"`
	Type   ReactionType `gorm:"type:varchar(16);not null" json:"type"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Post *Post `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// Comment allows a single level of replies: ParentID always points at a
// top-level comment.
type Comment struct {
	Base

	PostID   string  `gorm:"type:uuid;not null;index" json:"postId"`
	AuthorID string  `gorm:"type:uuid;not null;index" json:"authorId"`
	ParentID *string `gorm:"type:uuid;index" json:"parentId,omitempty"`
	Content  string  `gorm:"type:text;not null" json:"content"`

	Author  *User     `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"author,omitempty"`
	Post    *Post     `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Replies []Comment `gorm:"foreignKey:ParentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"replies,omitempty"`
}

type Share struct {
	Base

	UserID  string `gorm:"type:uuid;not null;uniqueIndex:idx_share_user_post" json:"userId"`
	PostID  string `gorm:"type:uuid;not null;uniqueIndex:idx_share_user_post;index" json:"postId"`
	Comment string `json:"comment"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Post *Post `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

type Bookmark struct {
	Base

	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_bookmark_user_post" json:"userId"`
	PostID string `gorm:"type:uuid;not null;uniqueIndex:idx_bookmark_user_post" json:"postId"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Post *Post `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"post,omitempty"`
}
