package pass

import "errors"

var (
	ErrNotFound          = errors.New("visitor pass not found")
	ErrNotApproved       = errors.New("pass must be approved before check-in")
	ErrNotCheckedIn      = errors.New("pass must be checked-in before it can be checked-out")
	ErrAlreadyFinalized  = errors.New("pass has already been approved or rejected")
	ErrDuplicatePassCode = errors.New("pass code already exists")
)
