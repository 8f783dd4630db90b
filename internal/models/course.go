package models

type Course struct {
	ID          string `json:"id"`
	Name        string `json:"course_name"`
	Description string `json:"course_description"`
	Code        string `json:"course_code"`
}
