package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolsaas/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("user")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrRoleInUse          = errors.New("cannot change the role of a user with a teacher, parent or student record")
)

type (
	Repository interface {
		EmailExists(ctx context.Context, email string) (bool, error)
		// CreateUser inserts the user along with its profile.
		CreateUser(ctx context.Context, usr *User) error
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on the email, first name or last name.
		QueryUsers(ctx context.Context, filter QueryFilter, page core.Page, ordering ...core.DBOrdering) ([]User, int64, error)
		// UpdateUser saves the user along with its profile.
		UpdateUser(ctx context.Context, usr *User) error
		SetLastLogin(ctx context.Context, id string, at time.Time) error
		IncrementTokenVersion(ctx context.Context, id string) error
		// HasRoleRecord reports whether a teacher, parent or student record belongs to the user.
		HasRoleRecord(ctx context.Context, id string) (bool, error)
		DeleteUser(ctx context.Context, id string) error
	}

	Service interface {
		CheckUniqueness(ctx context.Context, email string) error
		Create(ctx context.Context, nu NewUser) (User, error)
		Authenticate(ctx context.Context, email, pwd string) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Query(ctx context.Context, filter QueryFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error)
		Update(ctx context.Context, usr User, uu UpdateUser) (User, error)
		Delete(ctx context.Context, id string) error
		SetLastLogin(ctx context.Context, usr User) (User, error)
		// Logout invalidates every token issued to the user so far.
		Logout(ctx context.Context, usr User) error
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, data ResetUserPassword) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		tokens  tokenGenerator
		logger  core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config, logger core.Logger) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		tokens:  newTokenGenerator(conf.SecretKey, conf.PasswordResetTimeoutDelta),
		logger:  logger,
	}
}

func (svc *service) CheckUniqueness(ctx context.Context, email string) error {
	exists, err := svc.repo.EmailExists(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return core.NewFieldError("email", ErrEmailExists)
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	usr := User{
		Email:    nu.Email,
		Role:     nu.Role,
		IsActive: true,
		Profile: &Profile{
			FirstName: nu.FirstName,
			LastName:  nu.LastName,
		},
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	if err := svc.repo.CreateUser(ctx, &usr); err != nil {
		return User{}, err
	}
	return usr, nil
}

func (svc *service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !usr.IsActive {
		return User{}, ErrAccountDeactivated
	}
	return svc.SetLastLogin(ctx, usr)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) Query(ctx context.Context, filter QueryFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error) {
	filter.Clean()
	page = page.Clean()
	users, total, err := svc.repo.QueryUsers(ctx, filter, page, ordering...)
	if err != nil {
		return core.Paginated{}, err
	}
	if users == nil {
		users = []User{}
	}
	return core.NewPaginated(users, total, page), nil
}

// Update saves the changes of uu. A new password invalidates the tokens issued so far.
// The role of a user owning a teacher, parent or student record cannot change.
func (svc *service) Update(ctx context.Context, usr User, uu UpdateUser) (User, error) {
	if uu.Role != "" && uu.Role != usr.Role {
		owns, err := svc.repo.HasRoleRecord(ctx, usr.ID)
		if err != nil {
			return User{}, errors.Wrap(err, "checking role records")
		}
		if owns {
			return User{}, core.NewFieldError("role", ErrRoleInUse)
		}
	}

	uu.Apply(&usr)
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "hashing password")
		}
	}
	if err := svc.repo.UpdateUser(ctx, &usr); err != nil {
		return User{}, err
	}
	if uu.Password != "" {
		if err := svc.repo.IncrementTokenVersion(ctx, usr.ID); err != nil {
			return User{}, errors.Wrap(err, "invalidating tokens")
		}
		usr.TokenVersion++
	}
	return usr, nil
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteUser(ctx, id)
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	now := time.Now().UTC()
	if err := svc.repo.SetLastLogin(ctx, usr.ID, now); err != nil {
		return User{}, errors.Wrap(err, "setting lastLogin")
	}
	usr.LastLogin.SetValid(now)
	return usr, nil
}

func (svc *service) Logout(ctx context.Context, usr User) error {
	return svc.repo.IncrementTokenVersion(ctx, usr.ID)
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrNotFound
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) sendPasswordResetMail(usr User) {
	token, err := svc.tokens.makeToken(usr)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("making password reset token: %v", err), err, usr)
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: map[string]string{
			"Name":  usr.FullName(),
			"Token": token,
		},
	})
}

func (svc *service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	uid, err := svc.tokens.tokenUID(data.Token)
	if err != nil {
		return core.NewFieldError("token", err)
	}
	usr, err := svc.GetByID(ctx, uid)
	if err != nil {
		if core.IsNotFound(err) {
			return core.NewFieldError("token", errInvalidToken)
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if err = svc.tokens.verifyToken(usr, data.Token); err != nil {
		return core.NewFieldError("token", err)
	}
	if err = checkPasswordPolicy(data.Password, usr.Email, usr.FullName()); err != nil {
		return err
	}
	if err = usr.SetPassword(data.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	if err = svc.repo.UpdateUser(ctx, &usr); err != nil {
		return errors.Wrap(err, "saving user")
	}
	// a password change ends every open session
	return svc.repo.IncrementTokenVersion(ctx, usr.ID)
}
