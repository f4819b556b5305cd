package models

import "errors"

// AuthorName returns the display name of the post's author, or "" when the
// author was not loaded.
func (p *Post) AuthorName() string {
	if p.Author == nil {
		return ""
	}
	return p.Author.Name
}

// AddComment adds a comment to the post
func (p *Post) AddComment(comment *Comment) error {
	if comment == nil {
		return errors.New("comment cannot be nil")
	}

	comment.PostID = p.ID
	p.Comments = append(p.Comments, comment)
	return nil
}

// ToForm returns the form used to edit the post, prefilled with its fields.
func (p *Post) ToForm() PostForm {
	return PostForm{
		Title:    p.Title,
		Subtitle: p.Subtitle,
		Author:   p.AuthorName(),
		ImgURL:   p.ImgURL,
		Body:     p.Body,
	}
}
