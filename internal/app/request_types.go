package app

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"invoizo/internal/core"

	"github.com/go-playground/validator/v10"
)

const dateRule = "omitempty,datetime=2006-01-02"

// SignupRequest registers the business together with its first admin.
type SignupRequest struct {
	Business core.BusinessInput `json:"business"`
	Admin    core.NewUserInput  `json:"admin"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,max=128"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// PeriodRequest is an inclusive YYYY-MM-DD range; empty bounds are open.
type PeriodRequest struct {
	From string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type LedgerBalanceRequest struct {
	Preset string `json:"preset" validate:"omitempty,oneof=thisMonth lastMonth thisFinancialYear lastFinancialYear"`
	From   string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `json:"to" validate:"omitempty,datetime=2006-01-02"`
	Search string `json:"search" validate:"max=100"`
}

type BillListRequest struct {
	From   string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `json:"to" validate:"omitempty,datetime=2006-01-02"`
	Search string `json:"search" validate:"max=100"`
}

type SaveDayRequest struct {
	Date    string           `json:"date" validate:"required,datetime=2006-01-02"`
	Entries []core.BookEntry `json:"entries" validate:"max=500,dive"`
}

type CFOQueryRequest struct {
	Query string `json:"query" validate:"max=2000"`
}

type CFOReportRequest struct {
	Query    string `json:"query" validate:"max=2000"`
	Analysis string `json:"analysis" validate:"required"`
	Format   string `json:"format" validate:"omitempty,oneof=txt pdf"`
}

// FieldErrors maps JSON field paths to what is wrong with them.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + f[k]
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

var validate = newValidator()

// newValidator reports fields by their JSON names and attaches rules to the
// core input types, which carry no validate tags of their own.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	v.RegisterStructValidationMapRules(map[string]string{
		"Email": "omitempty,email",
		"Phone": "max=32",
		"Name":  "max=200",
	}, core.CustomerInput{})
	v.RegisterStructValidationMapRules(map[string]string{
		"Name": "max=200",
	}, core.SupplierInput{}, core.ProductInput{}, core.GroupInput{})
	v.RegisterStructValidationMapRules(map[string]string{
		"Date":        dateRule,
		"PaymentType": "omitempty,oneof=cash credit",
		"Items":       "max=200",
	}, core.SalesBillInput{})
	v.RegisterStructValidationMapRules(map[string]string{
		"Date":                dateRule,
		"SupplierInvoiceDate": dateRule,
		"Items":               "max=200",
	}, core.PurchaseBillInput{})
	v.RegisterStructValidationMapRules(map[string]string{
		"Date":      dateRule,
		"Narration": "max=500",
	}, core.BookEntry{})
	v.RegisterStructValidationMapRules(map[string]string{
		"Email":    "omitempty,email",
		"Currency": "omitempty,len=3",
	}, core.BusinessInput{})
	v.RegisterStructValidationMapRules(map[string]string{
		"Username": "max=64",
		"Password": "max=128",
		"Role":     "omitempty,oneof=admin manager",
	}, core.NewUserInput{})
	v.RegisterStructValidationMapRules(map[string]string{
		"Frequency": "omitempty,oneof=daily weekly monthly",
	}, core.AuditSettings{})
	v.RegisterStructValidationMapRules(map[string]string{
		"PaperSize": "omitempty,oneof=a4 a5 thermal-80mm",
		"Copies":    "gte=0,lte=10",
	}, core.CashPrintSettings{}, core.CreditPrintSettings{})
	return v
}

// check validates req and converts failures into FieldErrors.
func check(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate request: %w", err)
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		out[path] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	case "eqfield":
		return "must match " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " long"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	default:
		return "failed the " + fe.Tag() + " check"
	}
}
