package people

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/user"
)

var (
	// errors
	ErrTeacherNotFound = core.NewNotFoundError("teacher")
	ErrParentNotFound  = core.NewNotFoundError("parent")
	ErrStudentNotFound = core.NewNotFoundError("student")
	ErrRoleMismatch    = errors.New("user does not have the role required by this record")
	ErrUserNotFound    = errors.New("user does not exist")
)

type (
	// UserGetter finds the user a role record belongs to.
	UserGetter interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Stores struct {
		Teachers core.Store[Teacher]
		Parents  core.Store[Parent]
		Students core.Store[Student]
	}

	Service interface {
		CreateTeacher(ctx context.Context, nt NewTeacher) (Teacher, error)
		GetTeacher(ctx context.Context, id string) (Teacher, error)
		// TeacherByUser returns the teacher record of a TEACHER user.
		TeacherByUser(ctx context.Context, userID string) (Teacher, error)
		UpdateTeacher(ctx context.Context, id string, ut UpdateTeacher) (Teacher, error)
		DeleteTeacher(ctx context.Context, id string) error
		QueryTeachers(ctx context.Context, filter TeacherFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error)

		CreateParent(ctx context.Context, np NewParent) (Parent, error)
		GetParent(ctx context.Context, id string) (Parent, error)
		ParentByUser(ctx context.Context, userID string) (Parent, error)
		UpdateParent(ctx context.Context, id string, up UpdateParent) (Parent, error)
		DeleteParent(ctx context.Context, id string) error
		QueryParents(ctx context.Context, filter ParentFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error)

		CreateStudent(ctx context.Context, ns NewStudent) (Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		StudentByUser(ctx context.Context, userID string) (Student, error)
		UpdateStudent(ctx context.Context, id string, us UpdateStudent) (Student, error)
		DeleteStudent(ctx context.Context, id string) error
		QueryStudents(ctx context.Context, filter StudentFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error)
	}

	service struct {
		stores Stores
		users  UserGetter
		refs   core.RefChecker
	}
)

var _ Service = (*service)(nil)

func NewService(stores Stores, users UserGetter, refs core.RefChecker) Service {
	return &service{stores: stores, users: users, refs: refs}
}

// checkUserRole makes sure the user exists and has the role of the record about to reference it.
func (svc *service) checkUserRole(ctx context.Context, userID, role string) error {
	usr, err := svc.users.GetByID(ctx, userID)
	if err != nil {
		if core.IsNotFound(err) {
			return core.NewFieldError("userId", ErrUserNotFound)
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if usr.Role != role {
		return core.NewValidationError(ErrRoleMismatch, core.FieldError{
			Field: "userId",
			Error: "user must have the " + role + " role",
		})
	}
	return nil
}

func byUser[T any](ctx context.Context, store core.Store[T], userID string, notFound error) (T, error) {
	objs, err := store.All(ctx, core.NewFilter().Eq("user_id", userID))
	if err != nil {
		var zero T
		return zero, err
	}
	if len(objs) == 0 {
		var zero T
		return zero, notFound
	}
	return objs[0], nil
}

// Teachers

func (svc *service) CreateTeacher(ctx context.Context, nt NewTeacher) (Teacher, error) {
	if err := svc.checkUserRole(ctx, nt.UserID, user.RoleTeacher); err != nil {
		return Teacher{}, err
	}
	t := nt.Teacher()
	if err := svc.stores.Teachers.Create(ctx, &t); err != nil {
		return Teacher{}, errors.Wrap(err, "creating teacher")
	}
	return t, nil
}

func (svc *service) GetTeacher(ctx context.Context, id string) (Teacher, error) {
	return svc.stores.Teachers.Get(ctx, id)
}

func (svc *service) TeacherByUser(ctx context.Context, userID string) (Teacher, error) {
	return byUser(ctx, svc.stores.Teachers, userID, ErrTeacherNotFound)
}

func (svc *service) UpdateTeacher(ctx context.Context, id string, ut UpdateTeacher) (Teacher, error) {
	t, err := svc.GetTeacher(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	ut.Apply(&t)
	if err = svc.stores.Teachers.Update(ctx, &t); err != nil {
		return Teacher{}, errors.Wrap(err, "updating teacher")
	}
	return t, nil
}

func (svc *service) DeleteTeacher(ctx context.Context, id string) error {
	return svc.stores.Teachers.Delete(ctx, id)
}

func (svc *service) QueryTeachers(ctx context.Context, filter TeacherFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error) {
	return core.ListPage(ctx, svc.stores.Teachers, filter.Filter(), page, ordering...)
}

// Parents

func (svc *service) CreateParent(ctx context.Context, np NewParent) (Parent, error) {
	if err := svc.checkUserRole(ctx, np.UserID, user.RoleParent); err != nil {
		return Parent{}, err
	}
	p := np.Parent()
	if err := svc.stores.Parents.Create(ctx, &p); err != nil {
		return Parent{}, errors.Wrap(err, "creating parent")
	}
	return p, nil
}

func (svc *service) GetParent(ctx context.Context, id string) (Parent, error) {
	return svc.stores.Parents.Get(ctx, id)
}

func (svc *service) ParentByUser(ctx context.Context, userID string) (Parent, error) {
	return byUser(ctx, svc.stores.Parents, userID, ErrParentNotFound)
}

func (svc *service) UpdateParent(ctx context.Context, id string, up UpdateParent) (Parent, error) {
	p, err := svc.GetParent(ctx, id)
	if err != nil {
		return Parent{}, err
	}
	up.Apply(&p)
	if err = svc.stores.Parents.Update(ctx, &p); err != nil {
		return Parent{}, errors.Wrap(err, "updating parent")
	}
	return p, nil
}

func (svc *service) DeleteParent(ctx context.Context, id string) error {
	return svc.stores.Parents.Delete(ctx, id)
}

func (svc *service) QueryParents(ctx context.Context, filter ParentFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error) {
	return core.ListPage(ctx, svc.stores.Parents, filter.Filter(), page, ordering...)
}

// Students

func (svc *service) checkStudentRefs(ctx context.Context, classID string, parentID *string) error {
	if err := core.CheckRef(ctx, svc.refs, core.TableClasses, "classId", classID); err != nil {
		return err
	}
	if parentID != nil && *parentID != "" {
		return core.CheckRef(ctx, svc.refs, core.TableParents, "parentId", *parentID)
	}
	return nil
}

func (svc *service) CreateStudent(ctx context.Context, ns NewStudent) (Student, error) {
	if err := svc.checkUserRole(ctx, ns.UserID, user.RoleStudent); err != nil {
		return Student{}, err
	}
	if err := svc.checkStudentRefs(ctx, ns.ClassID, ns.ParentID); err != nil {
		return Student{}, err
	}
	s := ns.Student()
	if err := svc.stores.Students.Create(ctx, &s); err != nil {
		return Student{}, errors.Wrap(err, "creating student")
	}
	return s, nil
}

func (svc *service) GetStudent(ctx context.Context, id string) (Student, error) {
	return svc.stores.Students.Get(ctx, id)
}

func (svc *service) StudentByUser(ctx context.Context, userID string) (Student, error) {
	return byUser(ctx, svc.stores.Students, userID, ErrStudentNotFound)
}

func (svc *service) UpdateStudent(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	s, err := svc.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	us.Apply(&s)
	if err = svc.checkStudentRefs(ctx, s.ClassID, s.ParentID.Ptr()); err != nil {
		return Student{}, err
	}
	if err = svc.stores.Students.Update(ctx, &s); err != nil {
		return Student{}, errors.Wrap(err, "updating student")
	}
	return s, nil
}

func (svc *service) DeleteStudent(ctx context.Context, id string) error {
	return svc.stores.Students.Delete(ctx, id)
}

func (svc *service) QueryStudents(ctx context.Context, filter StudentFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error) {
	return core.ListPage(ctx, svc.stores.Students, filter.Filter(), page, ordering...)
}
