package domain

import "time"

// Status is the lending state of a book copy.
type Status string

const (
	StatusAvailable   Status = "Available"
	StatusMaintenance Status = "Maintenance"
	StatusLoaned      Status = "Loaned"
	StatusReserved    Status = "Reserved"
)

// DefaultStatus is applied to copies created without a status.
const DefaultStatus = StatusMaintenance

// Statuses returns every status in display order.
func Statuses() []Status {
	return []Status{StatusAvailable, StatusMaintenance, StatusLoaned, StatusReserved}
}

// IsValid checks if the status is a recognized value.
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusMaintenance, StatusLoaned, StatusReserved:
		return true
	default:
		return false
	}
}

// String returns the status name.
func (s Status) String() string {
	return string(s)
}

// BookInstance is a physical copy of a book that can be lent out.
type BookInstance struct {
	Record
	BookID  string    `json:"book"`
	Imprint string    `json:"imprint"`
	Status  Status    `json:"status"`
	DueBack time.Time `json:"due_back"`
}

// NewBookInstance builds a copy, applying the status and due-back defaults.
func NewBookInstance(bookID, imprint string, status Status, dueBack *time.Time) *BookInstance {
	bi := &BookInstance{
		BookID:  bookID,
		Imprint: imprint,
		Status:  status,
	}
	if bi.Status == "" {
		bi.Status = DefaultStatus
	}
	if dueBack != nil {
		bi.DueBack = *dueBack
	} else {
		bi.DueBack = time.Now()
	}
	return bi
}

// URL returns the copy's canonical path.
func (bi *BookInstance) URL() string {
	return "/catalog/bookinstance/" + bi.ID
}

// DueBackFormatted returns the display form of the due-back date.
func (bi *BookInstance) DueBackFormatted() string {
	return FormatDisplayDate(bi.DueBack)
}

// DueBackForm returns the due-back date as YYYY-MM-DD for form controls.
func (bi *BookInstance) DueBackForm() string {
	return FormatFormDate(bi.DueBack)
}
