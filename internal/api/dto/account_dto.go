package dto

// RegisterForm is posted by the registration page.
type RegisterForm struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

// LoginForm is posted by both login pages.
type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// ProfileForm updates the customer's own account. An empty Password keeps the current one.
type ProfileForm struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password"`
}
