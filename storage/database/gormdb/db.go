package gormdb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/schoolsaas/core"
)

// RefChecker checks row existence by primary key.
type RefChecker struct {
	db *gorm.DB
}

var _ core.RefChecker = (*RefChecker)(nil) // interface compliance check

func NewRefChecker(db *gorm.DB) *RefChecker {
	return &RefChecker{db: db}
}

func (rc RefChecker) Exists(ctx context.Context, table core.Table, id string) (bool, error) {
	if _, ok := core.References[table]; !ok {
		return false, errors.Errorf("unknown table %q", table)
	}
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	var cnt int64
	if err := rc.db.WithContext(ctx).Table(string(table)).Where("id = ?", id).Count(&cnt).Error; err != nil {
		return false, errors.Wrapf(err, "checking %s existence", table.Entity())
	}
	return cnt > 0, nil
}

// Purger empties every table.
type Purger struct {
	db *gorm.DB
}

func NewPurger(db *gorm.DB) *Purger {
	return &Purger{db: db}
}

// Purge deletes every row, children before parents, in a single transaction.
// It returns the tables in the order they were emptied.
func (p Purger) Purge(ctx context.Context) ([]core.Table, error) {
	order, err := core.PurgeOrder()
	if err != nil {
		return nil, err
	}
	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range order {
			if err := tx.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
				return errors.Wrapf(err, "purging %s", table)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Counter counts table rows over a plain sqlx connection.
type Counter struct {
	db *sqlx.DB
}

func NewCounter(db *sqlx.DB) *Counter {
	return &Counter{db: db}
}

// Counts returns the row count of every table.
func (c Counter) Counts(ctx context.Context) (map[core.Table]int, error) {
	counts := make(map[core.Table]int, len(core.Tables))
	for _, table := range core.Tables {
		var cnt int
		if err := c.db.GetContext(ctx, &cnt, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)); err != nil {
			return nil, errors.Wrapf(err, "counting %s", table)
		}
		counts[table] = cnt
	}
	return counts, nil
}
