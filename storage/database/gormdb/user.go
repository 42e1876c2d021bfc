package gormdb

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/user"
)

type userRepository struct {
	db    *gorm.DB
	store *Store[user.User]
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db, store: NewStore[user.User](db, user.ErrNotFound, "Profile")}
}

func (repo userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var cnt int64
	err := repo.db.WithContext(ctx).Model(&user.User{}).Where("email = ?", email).Count(&cnt).Error
	if err != nil {
		return false, errors.Wrap(err, "checking email")
	}
	return cnt > 0, nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr *user.User) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(usr).Error; err != nil {
			return writeErr(err, "inserting user")
		}
		if usr.Profile != nil {
			usr.Profile.UserID = usr.ID
			if err := tx.Create(usr.Profile).Error; err != nil {
				return writeErr(err, "inserting profile")
			}
		}
		return nil
	})
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.store.Get(ctx, id)
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	err := repo.db.WithContext(ctx).Preload("Profile").Where("email = ?", email).Take(&usr).Error
	return usr, readErr(err, user.ErrNotFound, "finding user by email")
}

func (repo userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter, page core.Page, ordering ...core.DBOrdering) ([]user.User, int64, error) {
	f := core.NewFilter()
	if term := strings.ToLower(filter.Search); term != "" {
		like := "%" + term + "%"
		f.Cond(
			"(LOWER(email) LIKE ? OR id IN (SELECT user_id FROM profiles WHERE LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?))",
			like, like, like,
		)
	}
	if len(filter.Roles) > 0 {
		f.Cond("role IN ?", filter.Roles)
	}
	if filter.IsActive != nil {
		f.Eq("is_active", *filter.IsActive)
	}
	if !filter.CreatedFrom.IsZero() {
		f.Cond("created_at >= ?", filter.CreatedFrom.UTC())
	}
	if !filter.CreatedTo.IsZero() {
		f.Cond("created_at <= ?", filter.CreatedTo.UTC())
	}
	return repo.store.List(ctx, f, page, ordering...)
}

func (repo userRepository) UpdateUser(ctx context.Context, usr *user.User) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txStore := NewStore[user.User](tx, user.ErrNotFound)
		if err := txStore.Update(ctx, usr); err != nil {
			return err
		}
		if usr.Profile == nil {
			return nil
		}
		usr.Profile.UserID = usr.ID
		if usr.Profile.ID == "" {
			return writeErr(tx.Create(usr.Profile).Error, "inserting profile")
		}
		return NewStore[user.Profile](tx, core.NewNotFoundError("profile")).Update(ctx, usr.Profile)
	})
}

func (repo userRepository) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	return repo.updateColumn(ctx, id, "last_login", at.UTC())
}

func (repo userRepository) IncrementTokenVersion(ctx context.Context, id string) error {
	return repo.updateColumn(ctx, id, "token_version", gorm.Expr("token_version + 1"))
}

func (repo userRepository) HasRoleRecord(ctx context.Context, id string) (bool, error) {
	var cnt int64
	err := repo.db.WithContext(ctx).Raw(
		"SELECT (SELECT COUNT(*) FROM "+string(core.TableTeachers)+" WHERE user_id = ?)"+
			" + (SELECT COUNT(*) FROM "+string(core.TableParents)+" WHERE user_id = ?)"+
			" + (SELECT COUNT(*) FROM "+string(core.TableStudents)+" WHERE user_id = ?)",
		id, id, id,
	).Scan(&cnt).Error
	if err != nil {
		return false, errors.Wrap(err, "counting role records")
	}
	return cnt > 0, nil
}

func (repo userRepository) updateColumn(ctx context.Context, id, column string, value interface{}) error {
	if _, err := uuid.Parse(id); err != nil {
		return user.ErrNotFound
	}
	res := repo.db.WithContext(ctx).Model(&user.User{}).Where("id = ?", id).UpdateColumn(column, value)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "updating user %s", column)
	}
	if res.RowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo userRepository) DeleteUser(ctx context.Context, id string) error {
	return repo.store.Delete(ctx, id)
}
