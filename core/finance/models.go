package finance

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/schoolsaas/core"
)

// Fee terms
const (
	TermAdmission  = "ADMISSION"
	TermQuarterly  = "QUARTERLY"
	TermHalfYearly = "HALF_YEARLY"
	TermAnnual     = "ANNUAL"
	TermMonthly    = "MONTHLY"
	TermOneTime    = "ONE_TIME"
)

// Payment statuses
const (
	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
	PaymentFailed    = "FAILED"
	PaymentRefunded  = "REFUNDED"
	PaymentCancelled = "CANCELLED"
)

// Payment methods
const (
	MethodCash       = "CASH"
	MethodCheque     = "CHEQUE"
	MethodOnline     = "ONLINE"
	MethodCard       = "CARD"
	MethodUPI        = "UPI"
	MethodNetBanking = "NET_BANKING"
)

type FeeStructure struct {
	core.Model
	ClassID     string      `json:"classId" gorm:"not null"`
	FeeName     string      `json:"feeName" gorm:"not null"`
	Amount      float64     `json:"amount" gorm:"not null"`
	Term        string      `json:"term" gorm:"not null"`
	DueDate     time.Time   `json:"dueDate" gorm:"not null"`
	Description null.String `json:"description"`
}

func (FeeStructure) TableName() string { return string(core.TableFeeStructures) }

type FeePayment struct {
	core.Model
	StudentID     string      `json:"studentId" gorm:"not null"`
	Amount        float64     `json:"amount" gorm:"not null"`
	FeeType       string      `json:"feeType" gorm:"not null"`
	Term          string      `json:"term" gorm:"not null"`
	PaymentDate   time.Time   `json:"paymentDate" gorm:"not null"`
	PaymentMethod string      `json:"paymentMethod" gorm:"not null"`
	TransactionID null.String `json:"transactionId" gorm:"uniqueIndex"`
	Status        string      `json:"status" gorm:"not null"`
	ReceiptNumber string      `json:"receiptNumber" gorm:"uniqueIndex;not null"`
	Remarks       null.String `json:"remarks"`
}

func (FeePayment) TableName() string { return string(core.TableFeePayments) }

// Balance is what a student owes for the fees of their class.
type Balance struct {
	StudentID string  `json:"studentId"`
	TotalDue  float64 `json:"totalDue"`
	TotalPaid float64 `json:"totalPaid"`
	Balance   float64 `json:"balance"`
}

type NewFeeStructure struct {
	ClassID     string    `json:"classId" validate:"required,uuid"`
	FeeName     string    `json:"feeName" validate:"required,max=100"`
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	Term        string    `json:"term" validate:"required,oneof=ADMISSION QUARTERLY HALF_YEARLY ANNUAL MONTHLY ONE_TIME"`
	DueDate     time.Time `json:"dueDate" validate:"required"`
	Description *string   `json:"description"`
}

func (nfs *NewFeeStructure) Validate(validate *validator.Validate) error {
	nfs.FeeName = core.CleanString(nfs.FeeName)
	return validate.Struct(nfs)
}

func (nfs NewFeeStructure) FeeStructure() FeeStructure {
	return FeeStructure{
		ClassID:     nfs.ClassID,
		FeeName:     nfs.FeeName,
		Amount:      nfs.Amount,
		Term:        nfs.Term,
		DueDate:     core.DateOf(nfs.DueDate),
		Description: null.StringFromPtr(nfs.Description),
	}
}

type UpdateFeeStructure struct {
	FeeName     *string    `json:"feeName" validate:"omitempty,min=1,max=100"`
	Amount      *float64   `json:"amount" validate:"omitempty,gt=0"`
	Term        *string    `json:"term" validate:"omitempty,oneof=ADMISSION QUARTERLY HALF_YEARLY ANNUAL MONTHLY ONE_TIME"`
	DueDate     *time.Time `json:"dueDate"`
	Description *string    `json:"description"`
}

func (ufs UpdateFeeStructure) Validate(validate *validator.Validate) error {
	return validate.Struct(ufs)
}

func (ufs UpdateFeeStructure) Apply(fs *FeeStructure) {
	core.SetString(&fs.FeeName, ufs.FeeName)
	if ufs.Amount != nil {
		fs.Amount = *ufs.Amount
	}
	core.SetString(&fs.Term, ufs.Term)
	if ufs.DueDate != nil {
		fs.DueDate = core.DateOf(*ufs.DueDate)
	}
	core.SetNullString(&fs.Description, ufs.Description)
}

type NewFeePayment struct {
	StudentID     string    `json:"studentId" validate:"required,uuid"`
	Amount        float64   `json:"amount" validate:"required,gt=0"`
	FeeType       string    `json:"feeType" validate:"required,max=100"`
	Term          string    `json:"term" validate:"required,oneof=ADMISSION QUARTERLY HALF_YEARLY ANNUAL MONTHLY ONE_TIME"`
	PaymentDate   time.Time `json:"paymentDate" validate:"required"`
	PaymentMethod string    `json:"paymentMethod" validate:"required,oneof=CASH CHEQUE ONLINE CARD UPI NET_BANKING"`
	TransactionID *string   `json:"transactionId" validate:"omitempty,max=100"`
	Status        string    `json:"status" validate:"omitempty,oneof=PENDING COMPLETED FAILED REFUNDED CANCELLED"`
	ReceiptNumber string    `json:"receiptNumber" validate:"required,max=50"`
	Remarks       *string   `json:"remarks" validate:"omitempty,max=500"`
}

func (nfp *NewFeePayment) Validate(validate *validator.Validate) error {
	nfp.FeeType = core.CleanString(nfp.FeeType)
	nfp.ReceiptNumber = core.CleanString(nfp.ReceiptNumber)
	return validate.Struct(nfp)
}

// FeePayment returns the payment to store. Payments are COMPLETED unless told otherwise.
func (nfp NewFeePayment) FeePayment() FeePayment {
	status := nfp.Status
	if status == "" {
		status = PaymentCompleted
	}
	return FeePayment{
		StudentID:     nfp.StudentID,
		Amount:        nfp.Amount,
		FeeType:       nfp.FeeType,
		Term:          nfp.Term,
		PaymentDate:   core.DateOf(nfp.PaymentDate),
		PaymentMethod: nfp.PaymentMethod,
		TransactionID: null.StringFromPtr(nfp.TransactionID),
		Status:        status,
		ReceiptNumber: nfp.ReceiptNumber,
		Remarks:       null.StringFromPtr(nfp.Remarks),
	}
}

type UpdateFeePayment struct {
	Status  *string `json:"status" validate:"omitempty,oneof=PENDING COMPLETED FAILED CANCELLED"`
	Remarks *string `json:"remarks" validate:"omitempty,max=500"`
}

func (ufp UpdateFeePayment) Validate(validate *validator.Validate) error {
	return validate.Struct(ufp)
}

func (ufp UpdateFeePayment) Apply(fp *FeePayment) {
	core.SetString(&fp.Status, ufp.Status)
	core.SetNullString(&fp.Remarks, ufp.Remarks)
}

type FeeStructureFilter struct {
	ClassID string `query:"classId"`
	Term    string `query:"term"`
}

func (qf FeeStructureFilter) Filter() *core.Filter {
	return core.NewFilter().
		EqIf("class_id", qf.ClassID).
		EqIf("term", qf.Term)
}

type FeePaymentFilter struct {
	StudentID     string    `query:"studentId"`
	Status        string    `query:"status"`
	PaymentMethod string    `query:"paymentMethod"`
	From          time.Time `query:"from"`
	To            time.Time `query:"to"`
	Search        string    `query:"search"`
}

func (qf FeePaymentFilter) Filter() *core.Filter {
	f := core.NewFilter().
		EqIf("student_id", qf.StudentID).
		EqIf("status", qf.Status).
		EqIf("payment_method", qf.PaymentMethod).
		Search(qf.Search, "receipt_number", "transaction_id", "fee_type")
	if !qf.From.IsZero() {
		f.Cond("payment_date >= ?", core.DateOf(qf.From))
	}
	if !qf.To.IsZero() {
		f.Cond("payment_date <= ?", core.DateOf(qf.To))
	}
	return f
}
