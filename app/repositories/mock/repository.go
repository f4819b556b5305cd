// Package mock provides in-memory repositories for service and controller
// tests. All three repositories share one Store so author and post
// references resolve across them.
package mock

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ivansvit/upgraded-blog/app/models"
	"github.com/ivansvit/upgraded-blog/app/repositories"
)

// Store holds users, posts and comments in memory.
type Store struct {
	mutex    sync.RWMutex
	users    map[uint]*models.User
	posts    map[uint]*models.Post
	comments map[uint]*models.Comment
	nextID   uint
	err      error
}

func NewStore() *Store {
	return &Store{
		users:    make(map[uint]*models.User),
		posts:    make(map[uint]*models.Post),
		comments: make(map[uint]*models.Comment),
		nextID:   1,
	}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (s *Store) FailWith(err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.err = err
}

// Clear removes all records.
func (s *Store) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.users = make(map[uint]*models.User)
	s.posts = make(map[uint]*models.Post)
	s.comments = make(map[uint]*models.Comment)
	s.nextID = 1
}

func (s *Store) Posts() *PostRepository       { return &PostRepository{s} }
func (s *Store) Users() *UserRepository       { return &UserRepository{s} }
func (s *Store) Comments() *CommentRepository { return &CommentRepository{s} }

// Counts returns the number of users, posts and comments.
func (s *Store) Counts() (users, posts, comments int) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.users), len(s.posts), len(s.comments)
}

func (s *Store) id() uint {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Store) resolveAuthor(identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	for _, u := range s.users {
		if u.Name == identifier && identifier != "" {
			return u, nil
		}
	}
	if id, err := strconv.ParseUint(identifier, 10, 64); err == nil {
		if u, ok := s.users[uint(id)]; ok {
			return u, nil
		}
	}
	return nil, repositories.ErrAuthorNotFound
}

func (s *Store) titleTaken(title string, excludeID uint) bool {
	for _, p := range s.posts {
		if p.Title == title && p.ID != excludeID {
			return true
		}
	}
	return false
}

func (s *Store) postCopy(p *models.Post, withComments bool) *models.Post {
	cp := *p
	cp.Author = s.users[p.AuthorID]
	cp.Comments = nil
	if withComments {
		for _, c := range s.sortedComments() {
			if c.PostID == p.ID {
				cp.Comments = append(cp.Comments, s.commentCopy(c))
			}
		}
	}
	return &cp
}

func (s *Store) commentCopy(c *models.Comment) *models.Comment {
	cp := *c
	cp.Author = s.users[c.AuthorID]
	return &cp
}

func (s *Store) sortedComments() []*models.Comment {
	comments := make([]*models.Comment, 0, len(s.comments))
	for _, c := range s.comments {
		comments = append(comments, c)
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments
}

// PostRepository implements repositories.PostRepository
type PostRepository struct{ s *Store }

func (m *PostRepository) List(ctx context.Context) ([]*models.Post, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	if m.s.err != nil {
		return nil, m.s.err
	}

	posts := make([]*models.Post, 0, len(m.s.posts))
	for _, p := range m.s.posts {
		posts = append(posts, m.s.postCopy(p, false))
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts, nil
}

func (m *PostRepository) FindByID(ctx context.Context, id uint) (*models.Post, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	if m.s.err != nil {
		return nil, m.s.err
	}

	p, ok := m.s.posts[id]
	if !ok {
		return nil, nil
	}
	return m.s.postCopy(p, true), nil
}

func (m *PostRepository) Create(ctx context.Context, np repositories.NewPost) (uint, error) {
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	if m.s.err != nil {
		return 0, m.s.err
	}

	author, err := m.s.resolveAuthor(np.Author)
	if err != nil {
		return 0, err
	}
	if m.s.titleTaken(np.Title, 0) {
		return 0, repositories.ErrDuplicateTitle
	}

	post := &models.Post{
		ID:       m.s.id(),
		Title:    np.Title,
		Subtitle: np.Subtitle,
		Date:     np.Date,
		Body:     np.Body,
		ImgURL:   np.ImgURL,
		AuthorID: author.ID,
	}
	m.s.posts[post.ID] = post
	return post.ID, nil
}

func (m *PostRepository) Update(ctx context.Context, id uint, c repositories.PostChanges) error {
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	if m.s.err != nil {
		return m.s.err
	}

	post, ok := m.s.posts[id]
	if !ok {
		return repositories.ErrPostNotFound
	}
	author, err := m.s.resolveAuthor(c.Author)
	if err != nil {
		return err
	}
	if m.s.titleTaken(c.Title, id) {
		return repositories.ErrDuplicateTitle
	}

	post.Title = c.Title
	post.Subtitle = c.Subtitle
	post.Body = c.Body
	post.ImgURL = c.ImgURL
	post.AuthorID = author.ID
	return nil
}

func (m *PostRepository) Delete(ctx context.Context, id uint) error {
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	if m.s.err != nil {
		return m.s.err
	}

	if _, ok := m.s.posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	for cid, c := range m.s.comments {
		if c.PostID == id {
			delete(m.s.comments, cid)
		}
	}
	delete(m.s.posts, id)
	return nil
}

// UserRepository implements repositories.UserRepository
type UserRepository struct{ s *Store }

func (m *UserRepository) Create(ctx context.Context, email, passwordHash, name string) (*models.User, error) {
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	if m.s.err != nil {
		return nil, m.s.err
	}

	for _, u := range m.s.users {
		if u.Email == email {
			return nil, repositories.ErrDuplicateEmail
		}
		if u.Name == name {
			return nil, repositories.ErrDuplicateName
		}
	}
	user := &models.User{ID: m.s.id(), Email: email, Password: passwordHash, Name: name}
	m.s.users[user.ID] = user
	cp := *user
	return &cp, nil
}

func (m *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID == id })
}

func (m *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == email })
}

func (m *UserRepository) FindByName(ctx context.Context, name string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Name == name })
}

func (m *UserRepository) find(match func(*models.User) bool) (*models.User, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	if m.s.err != nil {
		return nil, m.s.err
	}

	for _, u := range m.s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// CommentRepository implements repositories.CommentRepository
type CommentRepository struct{ s *Store }

func (m *CommentRepository) Create(ctx context.Context, text string, authorID, postID uint) (*models.Comment, error) {
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	if m.s.err != nil {
		return nil, m.s.err
	}

	if _, ok := m.s.users[authorID]; !ok {
		return nil, repositories.ErrUserNotFound
	}
	if _, ok := m.s.posts[postID]; !ok {
		return nil, repositories.ErrPostNotFound
	}
	comment := &models.Comment{ID: m.s.id(), Text: text, AuthorID: authorID, PostID: postID}
	m.s.comments[comment.ID] = comment
	return m.s.commentCopy(comment), nil
}

func (m *CommentRepository) List(ctx context.Context) ([]*models.Comment, error) {
	return m.list(func(*models.Comment) bool { return true })
}

func (m *CommentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return m.list(func(c *models.Comment) bool { return c.PostID == postID })
}

func (m *CommentRepository) list(match func(*models.Comment) bool) ([]*models.Comment, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	if m.s.err != nil {
		return nil, m.s.err
	}

	comments := make([]*models.Comment, 0)
	for _, c := range m.s.sortedComments() {
		if match(c) {
			comments = append(comments, m.s.commentCopy(c))
		}
	}
	return comments, nil
}

var (
	_ repositories.PostRepository    = (*PostRepository)(nil)
	_ repositories.UserRepository    = (*UserRepository)(nil)
	_ repositories.CommentRepository = (*CommentRepository)(nil)
)
