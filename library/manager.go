package library

import (
	"errors"
	"fmt"
	"log/slog"
)

// LibraryManager is a thin façade over the Database, keeping CLI code simple.
// Every state transition is logged.
type LibraryManager struct {
	db     *Database
	logger *slog.Logger
}

// NewLibraryManager opens (or creates) the SQLite database at dbPath.
func NewLibraryManager(dbPath string, opts ...Option) (*LibraryManager, error) {
	db, err := NewDatabase(dbPath, opts...)
	if err != nil {
		return nil, err
	}
	return &LibraryManager{db: db, logger: db.logger.With("component", "library")}, nil
}

// Close closes the underlying database.
func (lm *LibraryManager) Close() error { return lm.db.Close() }

// logOutcome logs rejected operations at debug and storage failures at error.
func (lm *LibraryManager) logOutcome(op string, err error, args ...any) {
	args = append(args, "error", err)
	if isRuleViolation(err) {
		lm.logger.Debug(op+" rejected", args...)
		return
	}
	lm.logger.Error(op+" failed", args...)
}

func isRuleViolation(err error) bool {
	return errors.Is(err, ErrBookNotFound) ||
		errors.Is(err, ErrMemberNotFound) ||
		errors.Is(err, ErrAlreadyBorrowed) ||
		errors.Is(err, ErrNotBorrowed) ||
		errors.Is(err, ErrHasActiveLoans)
}

// ------------------ Book helpers ------------------

func (lm *LibraryManager) AddBook(title, author, publisher string, pages int) (*Book, error) {
	b, err := lm.db.AddBook(title, author, publisher, pages)
	if err != nil {
		lm.logOutcome("add book", err, "title", title)
		return nil, err
	}
	lm.logger.Info("book added", "book_id", b.ID, "title", b.Title)
	return b, nil
}

// ImportBooks stores a batch of books atomically.
func (lm *LibraryManager) ImportBooks(books []NewBook) ([]*Book, error) {
	added, err := lm.db.AddBooks(books)
	if err != nil {
		lm.logOutcome("import books", err, "count", len(books))
		return nil, err
	}
	lm.logger.Info("books imported", "count", len(added))
	return added, nil
}

func (lm *LibraryManager) GetBook(id int64) (*Book, error) { return lm.db.GetBook(id) }
func (lm *LibraryManager) GetAllBooks() ([]*Book, error)   { return lm.db.GetAllBooks() }

// UpdateBookPages reports whether a book matched; a miss is not an error.
func (lm *LibraryManager) UpdateBookPages(id int64, pages int) (bool, error) {
	n, err := lm.db.UpdateBookPages(id, pages)
	if err != nil {
		lm.logOutcome("update pages", err, "book_id", id)
		return false, err
	}
	lm.logger.Info("book pages updated", "book_id", id, "pages", pages, "matched", n > 0)
	return n > 0, nil
}

// DeleteBook reports whether a book matched; a miss is not an error.
func (lm *LibraryManager) DeleteBook(id int64) (bool, error) {
	n, err := lm.db.DeleteBook(id)
	if err != nil {
		lm.logOutcome("delete book", err, "book_id", id)
		return false, err
	}
	lm.logger.Info("book deleted", "book_id", id, "matched", n > 0)
	return n > 0, nil
}

// ------------------ Member helpers ------------------

func (lm *LibraryManager) AddMember(name, surname string) (*Member, error) {
	m, err := lm.db.AddMember(name, surname)
	if err != nil {
		lm.logOutcome("add member", err)
		return nil, err
	}
	lm.logger.Info("member added", "member_id", m.ID)
	return m, nil
}

func (lm *LibraryManager) GetMember(id int64) (*Member, error) { return lm.db.GetMember(id) }
func (lm *LibraryManager) GetAllMembers() ([]*Member, error)   { return lm.db.GetAllMembers() }

func (lm *LibraryManager) DeleteMember(id int64) error {
	if err := lm.db.DeleteMember(id); err != nil {
		lm.logOutcome("delete member", err, "member_id", id)
		return err
	}
	lm.logger.Info("member deleted", "member_id", id)
	return nil
}

// ------------------ Circulation ------------------

func (lm *LibraryManager) BorrowBook(bookID, memberID int64) error {
	if err := lm.db.BorrowBook(bookID, memberID); err != nil {
		lm.logOutcome("borrow", err, "book_id", bookID, "member_id", memberID)
		return err
	}
	lm.logger.Info("book borrowed", "book_id", bookID, "member_id", memberID)
	return nil
}

func (lm *LibraryManager) ReturnBook(bookID int64) error {
	if err := lm.db.ReturnBook(bookID); err != nil {
		lm.logOutcome("return", err, "book_id", bookID)
		return err
	}
	lm.logger.Info("book returned", "book_id", bookID)
	return nil
}

func (lm *LibraryManager) StatusReport() ([]*StatusEntry, error) { return lm.db.StatusReport() }

// ------------------ Utilities ------------------

// PrettyBook formats a book for lists.
func PrettyBook(b *Book) string {
	return fmt.Sprintf("[ID: %d] %s - %s, %s (%d pages)", b.ID, b.Title, b.Author, b.Publisher, b.Pages)
}

// PrettyMember formats a member for lists.
func PrettyMember(m *Member) string {
	return fmt.Sprintf("[Member ID: %d] %s", m.ID, m.FullName())
}

// PrettyStatus formats one status report line.
func PrettyStatus(s *StatusEntry) string {
	if s.Available() {
		return fmt.Sprintf("[ID: %d] %s -> available", s.BookID, s.Title)
	}
	return fmt.Sprintf("[ID: %d] %s -> %s", s.BookID, s.Title, s.Borrower())
}
