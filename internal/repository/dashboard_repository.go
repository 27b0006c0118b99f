package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/campus-admin-console/internal/models"
)

// probeTables are the tables Probe accepts.
var probeTables = map[string]bool{
	"students": true, "functions": true, "participants": true, "instructors": true,
	"courses": true, "staff": true, "announcements": true, "gallery": true,
	"classes": true, "settings": true, "kidscamp": true, "socialservice": true,
	"socialservice_media": true, "user_security_settings": true,
}

// DashboardRepository computes aggregate counts.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository creates the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

const dashboardStatsQuery = `SELECT
(SELECT COUNT(*) FROM students) AS total_students,
(SELECT COUNT(*) FROM students WHERE status = 'active') AS active_students,
(SELECT COUNT(*) FROM instructors) AS total_instructors,
(SELECT COUNT(*) FROM courses) AS total_courses,
(SELECT COUNT(*) FROM courses WHERE status = 'active') AS active_courses,
(SELECT COUNT(*) FROM classes) AS total_classes,
(SELECT COUNT(*) FROM gallery) AS gallery_items,
(SELECT COALESCE(SUM(enrolled_students), 0) FROM courses) AS total_enrollments,
(SELECT COUNT(*) FROM functions) AS total_functions,
(SELECT COUNT(*) FROM participants) AS total_participants`

// DashboardStats reads every count in one statement, so either all counts are
// returned or none.
func (r *DashboardRepository) DashboardStats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := r.db.GetContext(ctx, &stats, dashboardStatsQuery); err != nil {
		return stats, fmt.Errorf("dashboard stats: %w", err)
	}
	return stats, nil
}

// Probe counts the rows of table.
func (r *DashboardRepository) Probe(ctx context.Context, table string) (int, error) {
	if !probeTables[table] {
		return 0, fmt.Errorf("probe %s: unknown table", table)
	}
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", pq.QuoteIdentifier(table))
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("probe %s: %w", table, err)
	}
	return count, nil
}
