// Package domain defines the persistence models for topics, users, articles
// and comments. These types are mapped with GORM and form the core data layer
// of the news backend.
package domain

import (
	"fmt"
	"time"
)

// DefaultArticleImgURL is stored when an article is created without an image.
const DefaultArticleImgURL = "https://images.pexels.com/photos/97050/pexels-photo-97050.jpeg?w=700&h=700"

// Topic groups articles under a human-readable slug.
//
// Fields:
//   - Slug: unique identifier, primary key.
//   - Description: optional free text (null when absent).
type Topic struct {
	Slug        string  `json:"slug"        gorm:"type:varchar(255);primaryKey"`
	Description *string `json:"description" gorm:"type:text"`
}

// TableName returns the database table name for Topic.
func (Topic) TableName() string { return "topics" }

// User is an article or comment author. Users are read-only through the API.
type User struct {
	Username  string `json:"username"   gorm:"type:varchar(255);primaryKey"`
	Name      string `json:"name"       gorm:"type:varchar(255);not null"`
	AvatarURL string `json:"avatar_url" gorm:"type:text"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Article is a post filed under a topic by an author.
//
// Fields:
//   - ArticleID: generated primary key.
//   - Topic / Author: foreign keys to topics.slug and users.username.
//   - Votes: running total, only ever adjusted by signed deltas.
//   - CommentCount: derived from the comments table; read-only and never
//     migrated as a column.
type Article struct {
	ArticleID     int64     `json:"article_id"      gorm:"primaryKey;autoIncrement"`
	Title         string    `json:"title"           gorm:"type:varchar(255);not null"`
	Topic         string    `json:"topic"           gorm:"type:varchar(255);not null;index"`
	Author        string    `json:"author"          gorm:"type:varchar(255);not null;index"`
	Body          string    `json:"body,omitempty"  gorm:"type:text;not null"`
	CreatedAt     time.Time `json:"created_at"      gorm:"not null;index"`
	Votes         int       `json:"votes"           gorm:"not null;default:0"`
	ArticleImgURL string    `json:"article_img_url" gorm:"type:text;default:'https://images.pexels.com/photos/97050/pexels-photo-97050.jpeg?w=700&h=700'"`
	CommentCount  int64     `json:"comment_count"   gorm:"->;-:migration"`

	TopicRef  Topic     `json:"-" gorm:"foreignKey:Topic;references:Slug;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	AuthorRef User      `json:"-" gorm:"foreignKey:Author;references:Username;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Comments  []Comment `json:"-" gorm:"foreignKey:ArticleID;references:ArticleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Article.
func (Article) TableName() string { return "articles" }

// Comment is a reply posted on an article. The article_id foreign key is
// declared on Article.Comments so deleting an article cascades here.
type Comment struct {
	CommentID int64     `json:"comment_id" gorm:"primaryKey;autoIncrement"`
	Body      string    `json:"body"       gorm:"type:text;not null"`
	ArticleID int64     `json:"article_id" gorm:"not null;index:idx_article_comments,priority:1"`
	Author    string    `json:"author"     gorm:"type:varchar(255);not null;index"`
	Votes     int       `json:"votes"      gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index:idx_article_comments,priority:2"`

	AuthorRef User `json:"-" gorm:"foreignKey:Author;references:Username;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string { return "comments" }

// CommentStats summarizes an article's comments for cache validation. A new
// comment, a deletion or a vote changes at least one field.
type CommentStats struct {
	Count   int64
	MaxID   int64
	VoteSum int64
	Newest  time.Time
}

// Version renders the stats as a compact token for ETags.
func (s CommentStats) Version() string {
	return fmt.Sprintf("%d.%d.%d.%d", s.Count, s.MaxID, s.VoteSum, s.Newest.UnixNano())
}
