package models

type Teacher struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
}

type Rating struct {
	ID          string `json:"id,omitempty"`
	TeacherName string `json:"teacher_name" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Feedback    string `json:"feedback" validate:"required,max=2000"`
	UserEmail   string `json:"user_email,omitempty"`
	Date        string `json:"date,omitempty"`
}

type CreateRatingRequest struct {
	TeacherName string `json:"teacher_name"`
	Subject     string `json:"subject"`
	Rating      int    `json:"rating"`
	Feedback    string `json:"feedback"`
	UserEmail   string `json:"user_email,omitempty"`
	Date        string `json:"date,omitempty"`
}

func (r Rating) CreateRequest() CreateRatingRequest {
	return CreateRatingRequest{
		TeacherName: r.TeacherName,
		Subject:     r.Subject,
		Rating:      r.Rating,
		Feedback:    r.Feedback,
		UserEmail:   r.UserEmail,
		Date:        r.Date,
	}
}
