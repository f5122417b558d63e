package student

import "github.com/volatiletech/null/v8"

// Statuses
const (
	StatusActive    = "ACTIVE"
	StatusNotActive = "NOT_ACTIVE"
	StatusDropout   = "DROPOUT"
)

var Statuses = []Status{
	{Name: "Active", Value: StatusActive},
	{Name: "Not Active", Value: StatusNotActive},
	{Name: "Dropout", Value: StatusDropout},
}

type Status struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StatusLabel returns the display name of a status value, the value itself if unknown.
func StatusLabel(value string) string {
	for _, st := range Statuses {
		if st.Value == value {
			return st.Name
		}
	}
	return value
}

type Student struct {
	ID     int64    `json:"id,omitempty"`
	NIM    string   `json:"nim"` // unique among persisted students (checked by the backend)
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Major  string   `json:"major"`
	Batch  null.Int `json:"batch"` // year entered university
	Status string   `json:"status"`
}

func (s Student) GetID() int64 { return s.ID }

func (s Student) Clone() Student { return s }

func (s Student) IsActive() bool { return s.Status == StatusActive }
