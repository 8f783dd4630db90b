package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/BradenHooton/minerva/internal/database"
	"github.com/BradenHooton/minerva/internal/models"
	"github.com/BradenHooton/minerva/internal/repositories"
	"github.com/BradenHooton/minerva/pkg/auth"
)

// TestDB manages a PostgreSQL testcontainer and database operations
type TestDB struct {
	Container  testcontainers.Container
	ConnString string
	Pool       *pgxpool.Pool
	DB         *database.DB
}

// SetupTestDatabase creates a PostgreSQL testcontainer, runs migrations,
// and returns a ready TestDB
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("minerva"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	dbWrapper := &database.DB{Pool: pool}

	// Migrations are embedded in the database package
	if err := dbWrapper.Migrate(); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{
		Container:  container,
		ConnString: connStr,
		Pool:       pool,
		DB:         dbWrapper,
	}, nil
}

// Teardown stops the container and closes the connection pool
func (db *TestDB) Teardown(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}

// CleanupTables truncates all data tables for test isolation. Seeded
// roles are left in place.
func (db *TestDB) CleanupTables(ctx context.Context) error {
	tables := []string{
		"user_courses",
		"courses",
		"payments",
		"login_attempts",
		"sessions",
		"profiles",
		"user_roles",
		"users",
	}

	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return nil
}

// InitializeRepositories creates all repository instances from the
// database wrapper
func InitializeRepositories(db *database.DB) (
	*repositories.UserRepository,
	*repositories.SessionRepository,
	*repositories.LoginAttemptRepository,
	*repositories.PaymentRepository,
	*repositories.CourseRepository,
) {
	return repositories.NewUserRepository(db),
		repositories.NewSessionRepository(db),
		repositories.NewLoginAttemptRepository(db),
		repositories.NewPaymentRepository(db),
		repositories.NewCourseRepository(db)
}

// SeedUser inserts a test user with a hashed password and the given role
func SeedUser(ctx context.Context, db *database.DB, username, password, role string) (*models.User, error) {
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := repositories.NewUserRepository(db).Create(ctx, username, hashedPassword, role)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

// SeedCourse inserts a course row
func SeedCourse(ctx context.Context, pool *pgxpool.Pool, name, description, code string) (string, error) {
	id := uuid.New().String()
	query := `
		INSERT INTO courses (id, course_name, course_description, course_code)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := pool.Exec(ctx, query, id, name, description, code); err != nil {
		return "", fmt.Errorf("failed to insert course: %w", err)
	}

	return id, nil
}

// EnrollUser links a user to a course
func EnrollUser(ctx context.Context, pool *pgxpool.Pool, userID, courseID string) error {
	query := `INSERT INTO user_courses (user_id, course_id) VALUES ($1, $2)`
	if _, err := pool.Exec(ctx, query, userID, courseID); err != nil {
		return fmt.Errorf("failed to enroll user: %w", err)
	}
	return nil
}
