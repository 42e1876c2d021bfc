package finance

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/people"
)

var (
	// errors
	ErrFeeStructureNotFound = core.NewNotFoundError("fee structure")
	ErrFeePaymentNotFound   = core.NewNotFoundError("fee payment")
	ErrNotRefundable        = errors.New("only completed payments can be refunded")
)

type (
	// StudentGetter finds the student a balance is computed for.
	StudentGetter interface {
		GetStudent(ctx context.Context, id string) (people.Student, error)
	}

	Stores struct {
		FeeStructures core.Store[FeeStructure]
		FeePayments   core.Store[FeePayment]
	}

	Service interface {
		CreateFeeStructure(ctx context.Context, nfs NewFeeStructure) (FeeStructure, error)
		GetFeeStructure(ctx context.Context, id string) (FeeStructure, error)
		UpdateFeeStructure(ctx context.Context, id string, ufs UpdateFeeStructure) (FeeStructure, error)
		DeleteFeeStructure(ctx context.Context, id string) error
		QueryFeeStructures(ctx context.Context, filter FeeStructureFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error)

		RecordPayment(ctx context.Context, nfp NewFeePayment) (FeePayment, error)
		GetPayment(ctx context.Context, id string) (FeePayment, error)
		UpdatePayment(ctx context.Context, id string, ufp UpdateFeePayment) (FeePayment, error)
		RefundPayment(ctx context.Context, id string) (FeePayment, error)
		DeletePayment(ctx context.Context, id string) error
		QueryPayments(ctx context.Context, filter FeePaymentFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error)

		// Balance sums the fee structures of the student's class minus the student's completed payments.
		Balance(ctx context.Context, studentID string) (Balance, error)
	}

	service struct {
		stores   Stores
		students StudentGetter
		refs     core.RefChecker
	}
)

var _ Service = (*service)(nil)

func NewService(stores Stores, students StudentGetter, refs core.RefChecker) Service {
	return &service{stores: stores, students: students, refs: refs}
}

// Fee structures

func (svc *service) CreateFeeStructure(ctx context.Context, nfs NewFeeStructure) (FeeStructure, error) {
	if err := core.CheckRef(ctx, svc.refs, core.TableClasses, "classId", nfs.ClassID); err != nil {
		return FeeStructure{}, err
	}
	fs := nfs.FeeStructure()
	if err := svc.stores.FeeStructures.Create(ctx, &fs); err != nil {
		return FeeStructure{}, errors.Wrap(err, "creating fee structure")
	}
	return fs, nil
}

func (svc *service) GetFeeStructure(ctx context.Context, id string) (FeeStructure, error) {
	return svc.stores.FeeStructures.Get(ctx, id)
}

func (svc *service) UpdateFeeStructure(ctx context.Context, id string, ufs UpdateFeeStructure) (FeeStructure, error) {
	fs, err := svc.GetFeeStructure(ctx, id)
	if err != nil {
		return FeeStructure{}, err
	}
	ufs.Apply(&fs)
	if err = svc.stores.FeeStructures.Update(ctx, &fs); err != nil {
		return FeeStructure{}, errors.Wrap(err, "updating fee structure")
	}
	return fs, nil
}

func (svc *service) DeleteFeeStructure(ctx context.Context, id string) error {
	return svc.stores.FeeStructures.Delete(ctx, id)
}

func (svc *service) QueryFeeStructures(ctx context.Context, filter FeeStructureFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error) {
	return core.ListPage(ctx, svc.stores.FeeStructures, filter.Filter(), page, ordering...)
}

// Payments

func (svc *service) RecordPayment(ctx context.Context, nfp NewFeePayment) (FeePayment, error) {
	if err := core.CheckRef(ctx, svc.refs, core.TableStudents, "studentId", nfp.StudentID); err != nil {
		return FeePayment{}, err
	}
	fp := nfp.FeePayment()
	if err := svc.stores.FeePayments.Create(ctx, &fp); err != nil {
		return FeePayment{}, errors.Wrap(err, "creating fee payment")
	}
	return fp, nil
}

func (svc *service) GetPayment(ctx context.Context, id string) (FeePayment, error) {
	return svc.stores.FeePayments.Get(ctx, id)
}

func (svc *service) UpdatePayment(ctx context.Context, id string, ufp UpdateFeePayment) (FeePayment, error) {
	fp, err := svc.GetPayment(ctx, id)
	if err != nil {
		return FeePayment{}, err
	}
	ufp.Apply(&fp)
	if err = svc.stores.FeePayments.Update(ctx, &fp); err != nil {
		return FeePayment{}, errors.Wrap(err, "updating fee payment")
	}
	return fp, nil
}

func (svc *service) RefundPayment(ctx context.Context, id string) (FeePayment, error) {
	fp, err := svc.GetPayment(ctx, id)
	if err != nil {
		return FeePayment{}, err
	}
	if fp.Status != PaymentCompleted {
		return FeePayment{}, core.NewValidationError(ErrNotRefundable)
	}
	fp.Status = PaymentRefunded
	if err = svc.stores.FeePayments.Update(ctx, &fp); err != nil {
		return FeePayment{}, errors.Wrap(err, "refunding fee payment")
	}
	return fp, nil
}

func (svc *service) DeletePayment(ctx context.Context, id string) error {
	return svc.stores.FeePayments.Delete(ctx, id)
}

func (svc *service) QueryPayments(ctx context.Context, filter FeePaymentFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error) {
	return core.ListPage(ctx, svc.stores.FeePayments, filter.Filter(), page, ordering...)
}

func (svc *service) Balance(ctx context.Context, studentID string) (Balance, error) {
	student, err := svc.students.GetStudent(ctx, studentID)
	if err != nil {
		return Balance{}, err
	}

	fees, err := svc.stores.FeeStructures.All(ctx, FeeStructureFilter{ClassID: student.ClassID}.Filter())
	if err != nil {
		return Balance{}, errors.Wrap(err, "listing fee structures")
	}
	payments, err := svc.stores.FeePayments.All(ctx, FeePaymentFilter{StudentID: studentID, Status: PaymentCompleted}.Filter())
	if err != nil {
		return Balance{}, errors.Wrap(err, "listing fee payments")
	}

	bal := Balance{StudentID: studentID}
	for _, fs := range fees {
		bal.TotalDue += fs.Amount
	}
	for _, fp := range payments {
		bal.TotalPaid += fp.Amount
	}
	bal.TotalDue = roundMoney(bal.TotalDue)
	bal.TotalPaid = roundMoney(bal.TotalPaid)
	bal.Balance = roundMoney(bal.TotalDue - bal.TotalPaid)
	return bal, nil
}

func roundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}
