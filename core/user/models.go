package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/schoolsaas/core"
)

// Roles
const (
	RoleStudent   = "STUDENT"
	RoleTeacher   = "TEACHER"
	RolePrincipal = "PRINCIPAL"
	RoleFinance   = "FINANCE"
	RoleParent    = "PARENT"
	RoleAdmin     = "ADMIN"
)

// Genders
const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
	GenderOther  = "OTHER"
)

// PasswordHashCost is the bcrypt cost used for every stored password.
const PasswordHashCost = 10

var (
	AdminRoles = []string{RoleAdmin, RolePrincipal}
	StaffRoles = []string{RoleAdmin, RolePrincipal, RoleTeacher, RoleFinance}
	AllRoles   = []string{RoleStudent, RoleTeacher, RolePrincipal, RoleFinance, RoleParent, RoleAdmin}

	// PublicRoles may be self-registered without an admin.
	PublicRoles = []string{RoleParent, RoleStudent}

	rolePriorities = map[string]int{
		RoleAdmin:     50,
		RolePrincipal: 40,
		RoleFinance:   30,
		RoleTeacher:   20,
		RoleParent:    10,
		RoleStudent:   5,
	}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Principal", Value: RolePrincipal},
		{Name: "Finance", Value: RoleFinance},
		{Name: "Parent", Value: RoleParent},
		{Name: "Admin", Value: RoleAdmin},
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

// IsValidRole reports whether role is one of AllRoles.
func IsValidRole(role string) bool {
	_, ok := rolePriorities[role]
	return ok
}

func HasRole(role string, roles ...string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	core.Model
	Email         string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash  string    `json:"-" gorm:"not null"`
	Role          string    `json:"role" gorm:"not null"`
	IsActive      bool      `json:"isActive" gorm:"not null"`
	EmailVerified bool      `json:"emailVerified" gorm:"not null"`
	TokenVersion  int       `json:"-" gorm:"not null"`
	LastLogin     null.Time `json:"lastLogin"`
	Profile       *Profile  `json:"profile,omitempty" gorm:"foreignKey:UserID"`
}

func (User) TableName() string { return string(core.TableUsers) }

type Profile struct {
	core.Model
	UserID      string      `json:"userId" gorm:"uniqueIndex;not null"`
	FirstName   string      `json:"firstName" gorm:"not null"`
	LastName    string      `json:"lastName" gorm:"not null"`
	Phone       null.String `json:"phone"`
	Avatar      null.String `json:"avatar"`
	DateOfBirth null.Time   `json:"dateOfBirth"`
	Gender      null.String `json:"gender"`
	Address     null.String `json:"address"`
	City        null.String `json:"city"`
	State       null.String `json:"state"`
	Pincode     null.String `json:"pincode"`
}

func (Profile) TableName() string { return string(core.TableProfiles) }

// FullName returns "first last" or the email when the user has no profile.
func (u *User) FullName() string {
	if u.Profile == nil {
		return u.Email
	}
	return u.Profile.FirstName + " " + u.Profile.LastName
}

// HashPassword hashes pwd the way every stored password is hashed.
func HashPassword(pwd string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), PasswordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (u *User) SetPassword(pwd string) error {
	hash, err := HashPassword(pwd)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pwd))
}

func (u *User) IsAdmin() bool {
	return HasRole(u.Role, AdminRoles...)
}

func (u *User) IsStaff() bool {
	return HasRole(u.Role, StaffRoles...)
}

func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

func (u *User) IsParent() bool {
	return u.Role == RoleParent
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Role      string `json:"role" validate:"required,role"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Role = core.CleanString(nu.Role)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Email       string      `json:"email" validate:"omitempty,email"`
	Role        string      `json:"role" validate:"omitempty,role"`
	IsActive    *bool       `json:"isActive"`
	Password    string      `json:"password"`
	FirstName   string      `json:"firstName" validate:"omitempty,max=100"`
	LastName    string      `json:"lastName" validate:"omitempty,max=100"`
	Phone       null.String `json:"phone"`
	DateOfBirth null.Time   `json:"dateOfBirth"`
	Gender      null.String `json:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	Address     null.String `json:"address"`
	City        null.String `json:"city"`
	State       null.String `json:"state"`
	Pincode     null.String `json:"pincode"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, validate *validator.Validate, svc Service) error {
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	uu.FirstName = core.CleanString(uu.FirstName)
	uu.LastName = core.CleanString(uu.LastName)

	if err := validate.Struct(uu); err != nil {
		return err
	}
	if uu.Email != "" && uu.Email != origUsr.Email {
		return svc.CheckUniqueness(ctx, uu.Email)
	}
	return nil
}

// Apply copies the provided fields onto usr.
func (uu UpdateUser) Apply(usr *User) {
	if uu.Email != "" {
		usr.Email = uu.Email
	}
	if uu.Role != "" {
		usr.Role = uu.Role
	}
	if uu.IsActive != nil {
		usr.IsActive = *uu.IsActive
	}
	if usr.Profile == nil {
		usr.Profile = &Profile{UserID: usr.ID}
	}
	p := usr.Profile
	if uu.FirstName != "" {
		p.FirstName = uu.FirstName
	}
	if uu.LastName != "" {
		p.LastName = uu.LastName
	}
	if uu.Phone.Valid {
		p.Phone = uu.Phone
	}
	if uu.DateOfBirth.Valid {
		p.DateOfBirth = null.TimeFrom(core.DateOf(uu.DateOfBirth.Time))
	}
	if uu.Gender.Valid {
		p.Gender = uu.Gender
	}
	if uu.Address.Valid {
		p.Address = uu.Address
	}
	if uu.City.Valid {
		p.City = uu.City
	}
	if uu.State.Valid {
		p.State = uu.State
	}
	if uu.Pincode.Valid {
		p.Pincode = uu.Pincode
	}
}

// ResetUserPassword is the payload of a password reset confirmation.
// The token carries the user it was issued for.
type ResetUserPassword struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

type QueryFilter struct {
	Search      string    `query:"search"`
	Roles       []string  `query:"role"`
	IsActive    *bool     `query:"isActive"`
	CreatedFrom time.Time `query:"createdFrom"`
	CreatedTo   time.Time `query:"createdTo"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
