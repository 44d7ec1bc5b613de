package models

import (
	"slices"
	"time"

	"gorm.io/datatypes"
)

// CourseServer is a course-level membership space (also called a classroom in
// older TaskTide builds). The repository assigns ID and CreatedAt at creation;
// JoinCode is immutable afterwards and Members never contains duplicates.
type CourseServer struct {
	ID       string `json:"id" gorm:"primaryKey;size:255"`
	Name     string `json:"name" gorm:"not null;size:200"`
	Year     string `json:"year" gorm:"not null;size:10"`
	Semester string `json:"semester" gorm:"not null;size:50"`

	JoinCode string `json:"join_code" gorm:"uniqueIndex;not null;size:20"`
	JoinLink string `json:"join_link" gorm:"size:500"`

	CreatedBy string                          `json:"created_by" gorm:"index;not null;size:255"`
	Members   datatypes.JSONSlice[string]     `json:"members"`

	MaxGroupsPerUnit *int `json:"max_groups_per_unit"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CourseServer) TableName() string {
	return "course_servers"
}

// HasMember reports whether userID is in Members or created the server.
func (s *CourseServer) HasMember(userID string) bool {
	if s.CreatedBy == userID {
		return true
	}
	return slices.Contains(s.Members, userID)
}
