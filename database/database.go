package database

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"github.com/camden-git/librarycatalog/models"
)

// statementBuilder picks the placeholder style of the connected dialect.
func statementBuilder(db *gorm.DB) sq.StatementBuilderType {
	if db.Dialector.Name() == "postgres" {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// CountCopiesByStatus returns the number of copies per status. Every known
// status is present in the result, including those with no copies.
func CountCopiesByStatus(ctx context.Context, db *gorm.DB) (map[models.BookInstanceStatus]int64, error) {
	queryBuilder := statementBuilder(db).
		Select("status", "COUNT(*)").
		From(models.BookInstance{}.TableName()).
		GroupBy("status")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for CountCopiesByStatus: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	rows, err := sqlDB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query copy status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.BookInstanceStatus]int64, len(models.BookInstanceStatuses))
	for _, s := range models.BookInstanceStatuses {
		counts[s] = 0
	}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan copy status count: %w", err)
		}
		counts[models.BookInstanceStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate copy status counts: %w", err)
	}
	return counts, nil
}
