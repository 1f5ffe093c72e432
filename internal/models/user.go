package models

type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Password string `json:"password" validate:"required,min=6"`
	College  string `json:"college,omitempty"`
	Branch   string `json:"branch,omitempty"`
	Semester string `json:"semester,omitempty"`
}

type SignupResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type Profile struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	College    string `json:"college,omitempty"`
	Branch     string `json:"branch,omitempty"`
	Semester   string `json:"semester,omitempty"`
	Department string `json:"department,omitempty"`
	Course     string `json:"course,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
}
