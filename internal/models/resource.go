package models

import (
	"net/url"
	"strconv"
	"strings"
)

var ResourceTypes = []string{"Notes", "PYQ", "Summary", "Practical"}

type Resource struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title" validate:"required,max=200"`
	Subject     string `json:"subject,omitempty"`
	Course      string `json:"course" validate:"required"`
	Type        string `json:"type" validate:"required"`
	Author      string `json:"author" validate:"required"`
	Downloads   int    `json:"downloads"`
	Date        string `json:"date,omitempty"`
	Privacy     string `json:"privacy,omitempty"`
	Filename    string `json:"filename,omitempty"`
	Semester    int    `json:"semester,omitempty"`
	Year        int    `json:"year,omitempty"`
	Description string `json:"description,omitempty"`
	College     string `json:"college,omitempty"`
}

// UpdateResourceRequest: редактируемые на странице "мои материалы" поля
type UpdateResourceRequest struct {
	Title       string `json:"title"`
	Subject     string `json:"subject,omitempty"`
	Description string `json:"description,omitempty"`
}

func (r Resource) UpdateRequest() UpdateResourceRequest {
	return UpdateResourceRequest{
		Title:       r.Title,
		Subject:     r.Subject,
		Description: r.Description,
	}
}

// ResourceFilter: состояние фильтров страницы поиска материалов
type ResourceFilter struct {
	Courses  []string `json:"courses,omitempty"`
	Subjects []string `json:"subjects,omitempty"`
	Types    []string `json:"types,omitempty"`
	Semester int      `json:"semester,omitempty"`
	Year     int      `json:"year,omitempty"`
	Search   string   `json:"search,omitempty"`
	Privacy  string   `json:"privacy,omitempty"`
}

// Values собирает query-параметры: мультивыбор через запятую, пустые значения не отправляются
func (f ResourceFilter) Values() url.Values {
	params := url.Values{}
	if len(f.Courses) > 0 {
		params.Set("course", strings.Join(f.Courses, ","))
	}
	if len(f.Subjects) > 0 {
		params.Set("subject", strings.Join(f.Subjects, ","))
	}
	if len(f.Types) > 0 {
		params.Set("type", strings.Join(f.Types, ","))
	}
	if f.Semester > 0 {
		params.Set("semester", strconv.Itoa(f.Semester))
	}
	if f.Year > 0 {
		params.Set("year", strconv.Itoa(f.Year))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		params.Set("search", s)
	}
	if f.Privacy != "" {
		params.Set("privacy", f.Privacy)
	}
	return params
}

func (f ResourceFilter) Clone() ResourceFilter {
	out := f
	out.Courses = append([]string(nil), f.Courses...)
	out.Subjects = append([]string(nil), f.Subjects...)
	out.Types = append([]string(nil), f.Types...)
	return out
}

func (f ResourceFilter) IsEmpty() bool {
	return len(f.Values()) == 0
}

// UploadRequest: метаданные multipart-загрузки POST /api/upload
type UploadRequest struct {
	FileName    string `validate:"required"`
	Content     []byte `validate:"required"`
	Title       string `validate:"required,max=200"`
	Subject     string
	Course      string
	Author      string `validate:"required"`
	Type        string `validate:"required,oneof=Notes PYQ Summary Practical"`
	Privacy     string `validate:"omitempty,oneof=public private"`
	Semester    string `validate:"omitempty,numeric"`
	Year        string `validate:"omitempty,numeric,len=4"`
	College     string
	Description string `validate:"max=1000"`
}

type UploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Title    string `json:"title"`
	Course   string `json:"course"`
	Type     string `json:"type"`
}
