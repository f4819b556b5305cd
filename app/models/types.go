package models

import "time"

// DateLayout is the display format of Post.Date.
const DateLayout = "January 02, 2006"

// Post represents a blog post with comments.
type Post struct {
	ID        uint       `gorm:"primaryKey"`
	Title     string     `gorm:"size:250;uniqueIndex;not null"`
	Subtitle  string     `gorm:"size:250;not null"`
	Date      string     `gorm:"size:250;not null"`
	Body      string     `gorm:"type:text;not null"`
	ImgURL    string     `gorm:"column:img_url;size:250;not null"`
	AuthorID  uint       `gorm:"not null;index"`
	Author    *User      `gorm:"foreignKey:AuthorID"`
	Comments  []*Comment `gorm:"foreignKey:PostID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName keeps the table name used by earlier deployments.
func (Post) TableName() string { return "blog_posts" }

// User is a registered account. Password holds a bcrypt hash.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"size:100;uniqueIndex;not null"`
	Password  string `gorm:"size:100;not null" json:"-"`
	Name      string `gorm:"size:1000;uniqueIndex;not null"`
	CreatedAt time.Time
}

// Comment represents a comment on a blog post.
type Comment struct {
	ID        uint   `gorm:"primaryKey"`
	Text      string `gorm:"size:1000;not null"`
	AuthorID  uint   `gorm:"not null;index"`
	Author    *User  `gorm:"foreignKey:AuthorID"`
	PostID    uint   `gorm:"not null;index"`
	CreatedAt time.Time
}
