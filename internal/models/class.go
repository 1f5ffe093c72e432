package models

type ClassInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	Instructor string `json:"instructor"`
	Syllabus   string `json:"syllabus,omitempty"`
	QuickSheet string `json:"quick_sheet,omitempty"`
}

type ClassView struct {
	ClassInfo
	ExamSeason bool   `json:"exam_season"`
	Exams      []Exam `json:"exams"`
}

var DefaultClasses = map[string]ClassInfo{
	"1": {ID: "1", Name: "Computer Science 101", Code: "CS101", Instructor: "Dr. Smith", Syllabus: "syllabus_cs101.pdf", QuickSheet: "quick_sheet_cs101.pdf"},
	"2": {ID: "2", Name: "Digital Electronics", Code: "EC201", Instructor: "Prof. Joshi", Syllabus: "syllabus_ec201.pdf", QuickSheet: "quick_sheet_cs101.pdf"},
	"3": {ID: "3", Name: "Data Structures", Code: "CS202", Instructor: "Dr. Sharma", Syllabus: "syllabus_cs202.pdf", QuickSheet: "quick_sheet_cs101.pdf"},
}
