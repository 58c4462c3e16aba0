package extract

import (
	"context"
	"fmt"
	"sort"

	"gradebook-extract/internal/gateway"
	"gradebook-extract/internal/logger"
	"gradebook-extract/internal/model"
	"gradebook-extract/internal/report"

	"github.com/rs/zerolog"
)

// studentRole is the only membership role the extraction fetches.
const studentRole = "S"

// CourseExtractor joins one course's enrollments, columns, users and
// scores into report rows. Any fetch failure is returned to the caller
// so the whole course can be skipped in one place; a course without
// student enrollments produces no rows and no error.
type CourseExtractor struct {
	ExternalGradeOnly bool
	log               zerolog.Logger
}

func NewCourseExtractor(externalGradeOnly bool) *CourseExtractor {
	return &CourseExtractor{
		ExternalGradeOnly: externalGradeOnly,
		log:               logger.Get(),
	}
}

type scoreKey struct {
	columnID string
	memberID string
}

// Extract fetches the course's entities, performs the join and writes
// one row per (column, enrolled student) pair. It returns the number
// of rows written.
func (e *CourseExtractor) Extract(ctx context.Context, gw gateway.Gateway, course model.Course, w report.Writer) (int, error) {
	log := e.log.With().Str("course_id", course.CourseID).Logger()

	members, err := gw.Enrollments(ctx, course.ID, []string{studentRole})
	if err != nil {
		return 0, fmt.Errorf("load memberships: %w", err)
	}
	log.Info().Int("count", len(members)).Msg("Student enrollments loaded")
	if len(members) == 0 {
		log.Info().Msg("No students, skipping course")
		return 0, nil
	}

	memberByUser := make(map[string]model.Enrollment, len(members))
	for _, member := range members {
		memberByUser[member.UserID] = member
	}

	var columns []model.GradebookColumn
	if e.ExternalGradeOnly {
		column, err := gw.ExternalGradeColumn(ctx, course.ID)
		if err != nil {
			return 0, fmt.Errorf("load external grade column: %w", err)
		}
		columns = []model.GradebookColumn{column}
	} else {
		columns, err = gw.Columns(ctx, course.ID)
		if err != nil {
			return 0, fmt.Errorf("load columns: %w", err)
		}
	}
	log.Info().Int("count", len(columns)).Msg("Gradebook columns loaded")

	sort.SliceStable(columns, func(i, j int) bool {
		return columns[i].Position < columns[j].Position
	})

	// The user listing is not role-filtered, so it can include
	// instructors and other non-students; those are dropped in the
	// join below.
	users, err := gw.Users(ctx, course.ID)
	if err != nil {
		return 0, fmt.Errorf("load users: %w", err)
	}
	log.Info().Int("count", len(users)).Msg("Course users loaded")

	sort.SliceStable(users, func(i, j int) bool {
		return users[i].Name < users[j].Name
	})

	scores, err := gw.Scores(ctx, course.ID)
	if err != nil {
		return 0, fmt.Errorf("load scores: %w", err)
	}
	log.Info().Int("count", len(scores)).Msg("Scores loaded")

	// First score seen for a (column, member) key wins, matching the
	// historical tie-break for duplicate source rows.
	scoreByKey := make(map[scoreKey]*model.Score, len(scores))
	for i := range scores {
		key := scoreKey{columnID: scores[i].ColumnID, memberID: scores[i].MemberID}
		if _, ok := scoreByKey[key]; !ok {
			scoreByKey[key] = &scores[i]
		}
	}

	rows := 0
	for _, column := range columns {
		for _, user := range users {
			member, ok := memberByUser[user.ID]
			if !ok {
				continue
			}

			row := model.ReportRow{
				Course:     course,
				Column:     column,
				User:       user,
				Enrollment: member,
				Score:      scoreByKey[scoreKey{columnID: column.ID, memberID: member.ID}],
			}
			if err := w.WriteRow(row); err != nil {
				return rows, fmt.Errorf("write row: %w", err)
			}
			rows++
		}
	}

	return rows, nil
}
