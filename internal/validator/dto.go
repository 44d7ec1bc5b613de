package validator

// ServerCreateRequest represents the request structure for creating a course
// server. CreatedBy is taken from the authenticated principal, never from the
// request body.
type ServerCreateRequest struct {
	Name             string `json:"name" validate:"required,course_name"`
	Year             string `json:"year" validate:"required,course_year"`
	Semester         string `json:"semester" validate:"required,min=1,max=50"`
	MaxGroupsPerUnit *int   `json:"max_groups_per_unit" validate:"omitempty,min=1,max=500"`
}

// JoinServerRequest represents a join-by-code attempt.
type JoinServerRequest struct {
	JoinCode string `json:"join_code" validate:"required,join_code"`
}
