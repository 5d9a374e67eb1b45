package models

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleFunction  Role = "function"
)

// Message is one entry of the conversation sent to the language model
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	// Name is the function a function-result message answers.
	Name string `json:"name,omitempty"`
	// Arguments holds the raw JSON arguments of the answered call.
	Arguments string `json:"arguments,omitempty"`
}

// Category groups expenses. The id is chosen by the caller.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Expense is a single spending entry of the ledger
type Expense struct {
	ID          string  `json:"id"`
	CategoryID  int     `json:"categoryId"`
	Amount      float64 `json:"amount"`
	Date        Date    `json:"date"`
	Description string  `json:"description"`
}

// TotalExpensesByCategory is the summed amount of one category.
type TotalExpensesByCategory struct {
	CategoryID  int     `json:"categoryId"`
	TotalAmount float64 `json:"totalAmount"`
}

// DateRange bounds expenses by date, both ends included.
type DateRange struct {
	StartDate Date `json:"startDate"`
	EndDate   Date `json:"endDate"`
}

// Contains reports whether d falls within the range.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.StartDate.Time) && !d.After(r.EndDate.Time)
}
