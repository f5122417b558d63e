package subject

import "github.com/volatiletech/null/v8"

type Subject struct {
	ID    int64       `json:"id,omitempty"`
	Code  string      `json:"code"`
	Name  string      `json:"name"`
	Major null.String `json:"major"`
	Sks   null.Int    `json:"sks"` // credit hours
}

func (s Subject) GetID() int64 { return s.ID }

func (s Subject) Clone() Subject { return s }
