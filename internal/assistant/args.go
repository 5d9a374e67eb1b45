package assistant

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xaenox/wallet-assistant/internal/models"
)

var validate = newValidator()

var nonBlank = regexp.MustCompile(`\S`)

func newValidator() *validator.Validate {
	v := validator.New()

	// string is neither empty nor only whitespace
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return nonBlank.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := models.ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

// decodeArgs checks that every required key is present, decodes the JSON
// object into dst and validates it.
func decodeArgs(arguments string, required []string, dst any) error {
	if strings.TrimSpace(arguments) == "" {
		arguments = "{}"
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(arguments), &fields); err != nil {
		return fmt.Errorf("arguments are not a JSON object: %w", err)
	}
	for _, name := range required {
		if _, ok := fields[name]; !ok {
			return fmt.Errorf("missing required argument %q", name)
		}
	}
	if err := json.Unmarshal([]byte(arguments), dst); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

type noArgs struct{}

type categoryArgs struct {
	ID   int    `json:"id" description:"Unique key"`
	Name string `json:"name" description:"Category name" validate:"notblank"`
}

type categoryIDArgs struct {
	ID int `json:"id" description:"Unique key"`
}

type dateRangeArgs struct {
	StartDate string `json:"startDate" description:"Start date of expense, YYYY-MM-DD" validate:"date"`
	EndDate   string `json:"endDate" description:"End date of expense, YYYY-MM-DD" validate:"date"`
}

func (a dateRangeArgs) toRange() models.DateRange {
	start, _ := models.ParseDate(a.StartDate)
	end, _ := models.ParseDate(a.EndDate)
	return models.DateRange{StartDate: start, EndDate: end}
}

type expenseArgs struct {
	CategoryID  int     `json:"categoryId" description:"Category id, foreign key of categories data store"`
	Amount      float64 `json:"amount" description:"Amount of expense"`
	Date        string  `json:"date" description:"Date of expense, YYYY-MM-DD" validate:"date"`
	Description string  `json:"description" description:"Description of expense"`
}

func (a expenseArgs) toExpense(id string) models.Expense {
	date, _ := models.ParseDate(a.Date)
	return models.Expense{
		ID:          id,
		CategoryID:  a.CategoryID,
		Amount:      a.Amount,
		Date:        date,
		Description: a.Description,
	}
}

type updateExpenseArgs struct {
	ID          string  `json:"id" description:"Unique key of the expense" validate:"notblank"`
	CategoryID  int     `json:"categoryId" description:"Category id, foreign key of categories data store"`
	Amount      float64 `json:"amount" description:"Amount of expense"`
	Date        string  `json:"date" description:"Date of expense, YYYY-MM-DD" validate:"date"`
	Description string  `json:"description" description:"Description of expense"`
}

type expenseIDArgs struct {
	ID string `json:"id" description:"Unique key" validate:"notblank"`
}
