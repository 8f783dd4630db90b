package repositories

import (
	"context"
	"fmt"

	"github.com/BradenHooton/minerva/internal/database"
	"github.com/BradenHooton/minerva/internal/models"
	"github.com/jackc/pgx/v5"
)

type CourseRepository struct {
	db *database.DB
}

func NewCourseRepository(db *database.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func scanCourses(rows pgx.Rows) ([]*models.Course, error) {
	defer rows.Close()

	courses := make([]*models.Course, 0)
	for rows.Next() {
		var c models.Course
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Code); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return courses, nil
}

func (r *CourseRepository) List(ctx context.Context) ([]*models.Course, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, course_name, course_description, course_code
		FROM courses
		ORDER BY course_code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}

	return scanCourses(rows)
}

// ListByUser returns the courses a user is enrolled in.
func (r *CourseRepository) ListByUser(ctx context.Context, userID string) ([]*models.Course, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT c.id, c.course_name, c.course_description, c.course_code
		FROM courses c
		JOIN user_courses uc ON c.id = uc.course_id
		WHERE uc.user_id = $1
		ORDER BY c.course_code
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}

	return scanCourses(rows)
}
