package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/seed"
	"github.com/trezcool/schoolsaas/core/user"
	"github.com/trezcool/schoolsaas/storage/database/gormdb"
	testutil "github.com/trezcool/schoolsaas/tests"
)

func setup(t *testing.T) (*commandLine, *testutil.Env, *bytes.Buffer) {
	env := testutil.NewEnv(t)
	out := new(bytes.Buffer)

	// start CLI
	return &commandLine{
		conf:     env.Conf,
		db:       env.DB,
		usrRepo:  env.UserRepo,
		validate: env.Validate,
		seeder:   seed.NewSeeder(seed.Demo(), gormdb.SeedTargets(env.Gorm), env.Validate, env.Purger, env.Counter, nil),
		out:      out,
	}, env, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		require.Error(t, err)
		assert.Equal(t, tt.wantErrStr, err.Error())
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, _ := setup(t)

	origRun := gooseRunFunc
	t.Cleanup(func() { gooseRunFunc = origRun })
	gooseRunFunc = func(_ context.Context, command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "timetable", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func mockPassword(t *testing.T, pwd string) {
	origRead := readPasswordFunc
	t.Cleanup(func() { readPasswordFunc = origRead })
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, env, _ := setup(t)
	usr := testutil.CreateUser(t, env.UserRepo, "Awe", "Some", "awe@test.in", "mdr", user.RoleTeacher, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", usr.Email}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.in"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "lmao"}},
		{name: "reset (case-insensitive email)", args: []string{"resetpassword", "-email", "AWE@test.in"}, extra: extra{pwd: "lol"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			pwd := ""
			if e, ok := tt.extra.(extra); ok {
				pwd = e.pwd
			}
			mockPassword(t, pwd)

			err := cli.run(args)
			if tt.wantErr != nil {
				assert.True(t, err == tt.wantErr || core.IsNotFound(err), "cli.run() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			refreshed, err := env.UserRepo.GetUserByID(context.Background(), usr.ID)
			require.NoError(t, err)
			assert.NoError(t, refreshed.CheckPassword(pwd))
			assert.Greater(t, refreshed.TokenVersion, usr.TokenVersion)
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli, env, _ := setup(t)
	existing := testutil.CreateUser(t, env.UserRepo, "Old", "Timer", "old@test.in", "mdr", user.RoleStudent, false)
	ctx := context.Background()

	mockPassword(t, "")
	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "unknown role", args: []string{"adduser", "-email", "x@test.in", "-role", "KING"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-email", "x@test.in"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}

	t.Run("create", func(t *testing.T) {
		mockPassword(t, "s3cr3t")
		require.NoError(t, cli.run([]string{"admin", "adduser", "-email", "Boss@Test.in", "-first", "Big", "-last", "Boss"}))

		usr, err := env.UserRepo.GetUserByEmail(ctx, "boss@test.in")
		require.NoError(t, err)
		assert.Equal(t, user.RoleAdmin, usr.Role)
		assert.True(t, usr.IsActive)
		assert.NoError(t, usr.CheckPassword("s3cr3t"))
		require.NotNil(t, usr.Profile)
		assert.Equal(t, "Big Boss", usr.FullName())
	})

	t.Run("update", func(t *testing.T) {
		mockPassword(t, "n3w")
		require.NoError(t, cli.run([]string{"admin", "adduser", "-email", existing.Email, "-role", user.RolePrincipal}))

		usr, err := env.UserRepo.GetUserByID(ctx, existing.ID)
		require.NoError(t, err)
		assert.Equal(t, user.RolePrincipal, usr.Role)
		assert.True(t, usr.IsActive)
		assert.NoError(t, usr.CheckPassword("n3w"))
		assert.Equal(t, "Old Timer", usr.FullName())
	})
}

func Test_commandLine_seed(t *testing.T) {
	cli, env, out := setup(t)
	ctx := context.Background()

	t.Run("dry run", func(t *testing.T) {
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "seed", "-dry-run"}))
		assert.Contains(t, out.String(), "Dry run: nothing was written")

		counts, err := env.Counter.Counts(ctx)
		require.NoError(t, err)
		assert.Zero(t, counts[core.TableUsers])
	})

	t.Run("run", func(t *testing.T) {
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "seed"}))
		assert.Contains(t, out.String(), "Summary:")
		assert.Contains(t, out.String(), "principal@school.com")

		counts, err := env.Counter.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 9, counts[core.TableUsers])
		assert.Equal(t, 1, counts[core.TableSchools])
	})

	t.Run("unknown flag", func(t *testing.T) {
		assert.Equal(t, errHelp, cli.run([]string{"admin", "seed", "-lol"}))
	})
}
