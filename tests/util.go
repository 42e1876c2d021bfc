package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/trezcool/schoolsaas/apps/shared"
	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/academic"
	"github.com/trezcool/schoolsaas/core/finance"
	"github.com/trezcool/schoolsaas/core/meeting"
	"github.com/trezcool/schoolsaas/core/notice"
	"github.com/trezcool/schoolsaas/core/people"
	"github.com/trezcool/schoolsaas/core/school"
	"github.com/trezcool/schoolsaas/core/user"
	emailsvc "github.com/trezcool/schoolsaas/services/email"
	logsvc "github.com/trezcool/schoolsaas/services/logger"
	"github.com/trezcool/schoolsaas/storage/database"
	"github.com/trezcool/schoolsaas/storage/database/gormdb"
)

var dbCount int64

// NewConfig returns the TEST configuration, pointing to a new in-memory SQLite database.
func NewConfig() *core.Config {
	_ = os.Setenv("ENV", "TEST")
	conf := core.NewConfig()
	conf.TestMode = true
	conf.Database.Engine = database.EngineSQLite
	conf.Database.Path = fmt.Sprintf(":memory:test%d", atomic.AddInt64(&dbCount, 1))
	conf.Server.DisableReqLogs = true
	return conf
}

// NewLogger returns a logger that discards everything.
func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

// PrepareDB opens and migrates the database of conf. It is closed when the test ends.
func PrepareDB(t *testing.T, conf *core.Config) (*sql.DB, *gorm.DB) {
	t.Helper()
	db, err := database.Open(conf)
	require.NoError(t, err, "opening database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db, conf.Database.Engine))
	gdb, err := database.OpenGorm(db, conf.Database.Engine, conf)
	require.NoError(t, err)
	return db, gdb
}

// Env wires every service over a fresh database.
type Env struct {
	Conf       *core.Config
	Logger     core.Logger
	DB         *sql.DB
	Gorm       *gorm.DB
	Refs       *gormdb.RefChecker
	Purger     *gormdb.Purger
	Counter    *gormdb.Counter
	Validate   *validator.Validate
	Translator ut.Translator

	UserRepo user.Repository
	Users    user.Service
	School   school.Service
	People   people.Service
	Academic academic.Service
	Finance  finance.Service
	Meetings meeting.Service
	Notices  notice.Service
}

func NewEnv(t *testing.T) *Env {
	t.Helper()
	conf := NewConfig()
	logger := NewLogger(conf)
	db, gdb := PrepareDB(t, conf)
	core.ParseEmailTemplates(conf, logger)

	validate, translator := shared.NewValidator()
	refs := gormdb.NewRefChecker(gdb)
	usrRepo := gormdb.NewUserRepository(gdb)
	usrSvc := user.NewServiceMock(usrRepo, emailsvc.NewConsoleServiceMock(conf), conf, logger)
	peopleSvc := people.NewService(gormdb.PeopleStores(gdb), usrSvc, refs)

	return &Env{
		Conf:       conf,
		Logger:     logger,
		DB:         db,
		Gorm:       gdb,
		Refs:       refs,
		Purger:     gormdb.NewPurger(gdb),
		Counter:    gormdb.NewCounter(sqlx.NewDb(db, database.EngineSQLite)),
		Validate:   validate,
		Translator: translator,
		UserRepo:   usrRepo,
		Users:      usrSvc,
		School:     school.NewService(gormdb.SchoolStores(gdb), refs),
		People:     peopleSvc,
		Academic:   academic.NewService(gormdb.AcademicStores(gdb), refs),
		Finance:    finance.NewService(gormdb.FinanceStores(gdb), peopleSvc, refs),
		Meetings:   meeting.NewService(gormdb.MeetingStores(gdb), refs),
		Notices:    notice.NewService(gormdb.NoticeStores(gdb), refs),
	}
}

// CreateUser stores a user without going through the password policy.
func CreateUser(
	t *testing.T,
	repo user.Repository,
	firstName, lastName, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	usr := user.User{
		Email:    email,
		Role:     role,
		IsActive: isActive,
		Profile:  &user.Profile{FirstName: firstName, LastName: lastName},
	}
	if len(createdAt) > 0 {
		usr.CreatedAt = createdAt[0].UTC()
		usr.UpdatedAt = usr.CreatedAt
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	if err := repo.CreateUser(context.Background(), &usr); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateClass stores a school and one of its classes.
func (env *Env) CreateClass(t *testing.T, name, section string) school.Class {
	t.Helper()
	ctx := context.Background()
	s, err := env.School.CreateSchool(ctx, school.NewSchool{
		Name:    "School " + name + section,
		Code:    "SCH" + name + section,
		Board:   school.BoardCBSE,
		Address: "1 Main Street",
		City:    "Delhi",
		State:   "Delhi",
		Pincode: "110001",
		Phone:   "+91-11-00000000",
		Email:   "school" + name + section + "@test.in",
	})
	require.NoError(t, err)
	c, err := env.School.CreateClass(ctx, school.NewClass{
		Name:         name,
		Section:      section,
		AcademicYear: "2024-2025",
		SchoolID:     s.ID,
	})
	require.NoError(t, err)
	return c
}

func (env *Env) CreateSubject(t *testing.T, code string) school.Subject {
	t.Helper()
	s, err := env.School.CreateSubject(context.Background(), school.NewSubject{
		Name: "Subject " + code,
		Code: code,
		Type: school.SubjectCore,
	})
	require.NoError(t, err)
	return s
}

func (env *Env) CreateTeacher(t *testing.T, email, employeeID string) people.Teacher {
	t.Helper()
	usr := CreateUser(t, env.UserRepo, "Teacher", employeeID, email, "", user.RoleTeacher, true)
	tch, err := env.People.CreateTeacher(context.Background(), people.NewTeacher{
		UserID:        usr.ID,
		EmployeeID:    employeeID,
		Qualification: "M.Sc.",
		JoiningDate:   core.MustDate("2020-06-01"),
	})
	require.NoError(t, err)
	return tch
}

func (env *Env) CreateParent(t *testing.T, email string) people.Parent {
	t.Helper()
	usr := CreateUser(t, env.UserRepo, "Parent", "Test", email, "", user.RoleParent, true)
	p, err := env.People.CreateParent(context.Background(), people.NewParent{UserID: usr.ID})
	require.NoError(t, err)
	return p
}

func (env *Env) CreateStudent(t *testing.T, email, admissionNumber, classID string) people.Student {
	t.Helper()
	usr := CreateUser(t, env.UserRepo, "Student", admissionNumber, email, "", user.RoleStudent, true)
	s, err := env.People.CreateStudent(context.Background(), people.NewStudent{
		UserID:          usr.ID,
		RollNumber:      admissionNumber,
		AdmissionNumber: admissionNumber,
		ClassID:         classID,
		AdmissionDate:   core.MustDate("2024-04-01"),
	})
	require.NoError(t, err)
	return s
}
