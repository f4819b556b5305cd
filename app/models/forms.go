package models

// PostForm carries the fields of the new/edit post form.
type PostForm struct {
	Title    string `form:"title" validate:"required,max=250"`
	Subtitle string `form:"subtitle" validate:"required,max=250"`
	Author   string `form:"author" validate:"required,max=1000"`
	ImgURL   string `form:"img_url" validate:"required,url,max=250"`
	Body     string `form:"body" validate:"required"`
}

// Validate checks the form against its validation tags.
func (f PostForm) Validate() error { return validateForm(f) }

// RegisterForm carries the fields of the registration form.
type RegisterForm struct {
	Email    string `form:"email" validate:"required,email,max=100"`
	Password string `form:"password" validate:"required,min=6,max=72"`
	Name     string `form:"name" validate:"required,max=1000"`
}

// Validate checks the form against its validation tags.
func (f RegisterForm) Validate() error { return validateForm(f) }

// LoginForm carries the fields of the login form.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// Validate checks the form against its validation tags.
func (f LoginForm) Validate() error { return validateForm(f) }

// CommentForm carries the comment text submitted on a post page.
type CommentForm struct {
	Text string `form:"text" validate:"required,max=1000"`
}

// Validate checks the form against its validation tags.
func (f CommentForm) Validate() error { return validateForm(f) }

// ContactForm carries the contact page fields relayed as feedback.
type ContactForm struct {
	Name    string `form:"name" validate:"required,max=100"`
	Email   string `form:"email" validate:"required,email"`
	Phone   string `form:"phone" validate:"omitempty,max=30"`
	Message string `form:"message" validate:"required,max=5000"`
}

// Validate checks the form against its validation tags.
func (f ContactForm) Validate() error { return validateForm(f) }
