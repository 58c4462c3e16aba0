package model

// Course is one course record as returned by the course listing.
// ID is the opaque primary key; CourseID is the human-readable code
// and the sort key for report ordering.
type Course struct {
	ID           string `json:"id"`
	CourseID     string `json:"courseId"`
	BatchUID     string `json:"batchUid"`
	Name         string `json:"name"`
	ServiceLevel string `json:"courseServiceLevel"`
	Available    bool   `json:"available"`
}

// Enrollment is a user's membership in a course. EnrolledAt is in
// seconds since epoch, as delivered by the remote service.
type Enrollment struct {
	ID         string `json:"id"`
	CourseID   string `json:"courseId"`
	UserID     string `json:"userId"`
	Available  bool   `json:"available"`
	EnrolledAt int64  `json:"enrollmentDate"`
	Role       string `json:"roleId"`
}

// GradebookColumn is one assessment item in a course's grade
// structure. DueDate is in seconds since epoch; zero means unset.
type GradebookColumn struct {
	ID               string  `json:"id"`
	CourseID         string  `json:"courseId"`
	Name             string  `json:"columnDisplayName"`
	Position         int     `json:"position"`
	ExternalGrade    bool    `json:"externalGrade"`
	Deleted          bool    `json:"deleted"`
	AggregationModel string  `json:"aggregationModel"`
	CalculationType  string  `json:"calculationType"`
	DueDate          int64   `json:"dueDate"`
	MultipleAttempts bool    `json:"multipleAttempts"`
	PointsPossible   float64 `json:"possible"`
	Scorable         bool    `json:"scorable"`
	Visible          bool    `json:"visible"`
}

// User is a course user. The course user listing is not filtered by
// role, so a User may have no matching student Enrollment.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BatchUID  string `json:"userBatchUid"`
	Available bool   `json:"isAvailable"`
	StudentID string `json:"studentId"`
}

// Score is a single gradebook cell, keyed by (ColumnID, MemberID)
// where MemberID is the enrollment primary key.
type Score struct {
	ID               string `json:"id"`
	ColumnID         string `json:"columnId"`
	MemberID         string `json:"memberId"`
	SchemaGradeValue string `json:"schemaGradeValue"`
	Grade            string `json:"grade"`
	ManualGrade      bool   `json:"manualGrade"`
	ManualScore      bool   `json:"manualScore"`
	Status           string `json:"status"`
}

// ReportRow is the flattened join of one (column, enrolled user) pair
// within a course. Score is nil when no score record matches the
// (column, member) pair; such rows render with empty grade fields.
type ReportRow struct {
	Course     Course
	Column     GradebookColumn
	User       User
	Enrollment Enrollment
	Score      *Score
}
