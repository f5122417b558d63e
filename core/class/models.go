package class

import (
	"fmt"

	"github.com/volatiletech/null/v8"
)

type Class struct {
	ID          int64    `json:"id,omitempty"`
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	SubjectID   int64    `json:"subjectId"`
	SubjectName string   `json:"subjectName"` // copy of the subject name, for display
	Semester    string   `json:"semester"`
	Year        null.Int `json:"year"`
	StudentIDs  []int64  `json:"studentIds"` // enrolled students
}

func (c Class) GetID() int64 { return c.ID }

func (c Class) Clone() Class {
	if c.StudentIDs != nil {
		c.StudentIDs = append(make([]int64, 0, len(c.StudentIDs)), c.StudentIDs...)
	}
	return c
}

func (c Class) HasStudent(id int64) bool {
	for _, sid := range c.StudentIDs {
		if sid == id {
			return true
		}
	}
	return false
}

// DisplayName formats a class name: "Algorithms - 2024 - Odd".
func DisplayName(subjectName string, year int, semester string) string {
	return fmt.Sprintf("%s - %d - %s", subjectName, year, semester)
}
