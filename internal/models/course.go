package models

// Course represents a course offering.
type Course struct {
	ID         string `db:"course_id" json:"course_id"`
	CourseName string `db:"course_name" json:"course_name"`
	CreditsNum int    `db:"credits_num" json:"credits_num"`
	LessonNum  int    `db:"lesson_num" json:"lesson_num"`
	CourseType string `db:"course_type" json:"course_type"`
}

// GradeMinimumPass is the lowest letter grade that satisfies a
// prerequisite. Letter grades order A through F, so anything sorting
// after D is a failing result.
const GradeMinimumPass = "D"

// CourseResult records the grade a student earned in a completed course.
type CourseResult struct {
	StudentID string `db:"student_id" json:"student_id"`
	CourseID  string `db:"course_id" json:"course_id"`
	Grade     string `db:"grade" json:"grade"`
}

// CourseFilter captures filtering criteria for listing courses.
type CourseFilter struct {
	Search     string
	CourseType string
	Page       int
	PageSize   int
}
