package transfer

import "fmt"

// InvalidDateError is returned when a mandate date is empty or unparsable.
type InvalidDateError struct {
	Input  string
	Reason string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", e.Input, e.Reason)
}

// MissingProjectError is returned when an invoice's project cannot be fetched.
// It aborts the whole resolution.
type MissingProjectError struct {
	InvoiceID int64
	ProjectID int64 // 0 if the invoice has no project
	Err       error // transport failure, nil if the project does not exist
}

func (e *MissingProjectError) Error() string {
	msg := fmt.Sprintf("invoice %d: no project with id %d found", e.InvoiceID, e.ProjectID)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MissingProjectError) Unwrap() error { return e.Err }

// MissingCustomerError is returned when the customer of an eligible invoice
// cannot be fetched.
type MissingCustomerError struct {
	InvoiceID  int64
	CustomerID int64
	Err        error
}

func (e *MissingCustomerError) Error() string {
	msg := fmt.Sprintf("invoice %d: no customer with id %d found", e.InvoiceID, e.CustomerID)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MissingCustomerError) Unwrap() error { return e.Err }

// MandateDateError ties an InvalidDateError to the invoice and customer it came from.
type MandateDateError struct {
	InvoiceID  int64
	CustomerID int64
	Err        error
}

func (e *MandateDateError) Error() string {
	return fmt.Sprintf("invoice %d: customer %d: mandate date: %v", e.InvoiceID, e.CustomerID, e.Err)
}

func (e *MandateDateError) Unwrap() error { return e.Err }
