package library

import (
	"errors"
	"fmt"
)

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrAlreadyBorrowed = errors.New("book is already borrowed")
	ErrNotBorrowed     = errors.New("book is not borrowed")
	ErrHasActiveLoans  = errors.New("member has active loans")
)

// ActiveLoansError is returned by DeleteMember when the member still holds books.
// It matches ErrHasActiveLoans under errors.Is.
type ActiveLoansError struct {
	MemberID int64
	Count    int
}

func (e *ActiveLoansError) Error() string {
	return fmt.Sprintf("member %d still holds %d book(s)", e.MemberID, e.Count)
}

func (e *ActiveLoansError) Is(target error) bool { return target == ErrHasActiveLoans }
