package report

import (
	"strconv"
	"time"

	"gradebook-extract/internal/model"
)

// Header is the fixed column order of the report. Writers must emit it
// verbatim before any data row.
var Header = []string{
	"COURSE_ID",
	"COURSE_BATCHUID",
	"COURSE_PKID",
	"COURSE_TITLE",
	"COURSE_TYPE",
	"COURSE_AVAILABLE",
	"COLUMN_NAME",
	"COLUMN_PKID",
	"IS_EXTERNAL_GRADE",
	"COLUMN_IS_DELETED",
	"COLUMN_POSITION",
	"COLUMN_MODEL",
	"COLUMN_CALC_TYPE",
	"COLUMN_DUE_DATE",
	"COLUMN_MULTI_ATTEMPTS",
	"COLUMN_POINTS_POSSIBLE",
	"COLUMN_IS_SCORABLE",
	"COLUMN_IS_VISIBLE",
	"USER_ID",
	"USER_BATCHUID",
	"USER_PKID",
	"USER_IS_AVAILABLE",
	"USER_STUDENT_ID",
	"ENR_PKID",
	"ENR_IS_AVAILABLE",
	"ENR_DATE",
	"GRADE_DISPLAYED",
	"GRADE",
	"GRADE_ID",
	"GRADE_MANUAL",
	"GRADE_SCORE_MANUAL",
	"GRADE_STATUS",
}

// timeLayout renders epoch-second timestamps as local date-times, the
// same shape the original feed consumers already parse.
const timeLayout = "2006/01/02 15:04:05"

// Fields renders one report row into the Header column order. A nil
// score yields empty strings for every grade column.
func Fields(row model.ReportRow) []string {
	fields := make([]string, 0, len(Header))

	fields = append(fields,
		row.Course.CourseID,
		row.Course.BatchUID,
		row.Course.ID,
		row.Course.Name,
		row.Course.ServiceLevel,
		yn(row.Course.Available),
	)

	fields = append(fields,
		row.Column.Name,
		row.Column.ID,
		yn(row.Column.ExternalGrade),
		yn(row.Column.Deleted),
		strconv.Itoa(row.Column.Position),
		row.Column.AggregationModel,
		row.Column.CalculationType,
		epoch(row.Column.DueDate),
		yn(row.Column.MultipleAttempts),
		points(row.Column.PointsPossible),
		yn(row.Column.Scorable),
		yn(row.Column.Visible),
	)

	fields = append(fields,
		row.User.Name,
		row.User.BatchUID,
		row.User.ID,
		yn(row.User.Available),
		row.User.StudentID,
	)

	fields = append(fields,
		row.Enrollment.ID,
		yn(row.Enrollment.Available),
		epoch(row.Enrollment.EnrolledAt),
	)

	if row.Score == nil {
		fields = append(fields, "", "", "", "", "", "")
	} else {
		fields = append(fields,
			row.Score.SchemaGradeValue,
			row.Score.Grade,
			row.Score.ID,
			yn(row.Score.ManualGrade),
			yn(row.Score.ManualScore),
			row.Score.Status,
		)
	}

	return fields
}

func yn(v bool) string {
	if v {
		return "Y"
	}
	return "N"
}

func epoch(seconds int64) string {
	if seconds == 0 {
		return ""
	}
	return time.Unix(seconds, 0).Format(timeLayout)
}

func points(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
