package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"library-catalog/library"
)

// menu drives the text interface over any reader/writer pair.
type menu struct {
	mgr *library.LibraryManager
	sc  *bufio.Scanner
	out io.Writer
}

func newMenu(mgr *library.LibraryManager, in io.Reader, out io.Writer) *menu {
	return &menu{mgr: mgr, sc: bufio.NewScanner(in), out: out}
}

func (m *menu) printf(format string, args ...any) { fmt.Fprintf(m.out, format, args...) }
func (m *menu) println(args ...any)               { fmt.Fprintln(m.out, args...) }

// prompt prints label and reads one line. ok is false once input is exhausted.
func (m *menu) prompt(label string) (string, bool) {
	m.printf("%s", label)
	if !m.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.sc.Text()), true
}

// promptInt reads a number. ok is false on end of input or a parse failure;
// the caller abandons the operation either way.
func (m *menu) promptInt(label, invalidMsg string) (int64, bool) {
	s, ok := m.prompt(label)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		m.println(invalidMsg)
		return 0, false
	}
	return n, true
}

// run shows the main menu until the user quits or input ends.
func (m *menu) run(banner bool) {
	if banner {
		m.println("\n=== Library Catalog ===")
	}

	for {
		m.println("\n" + strings.Repeat("=", 30))
		m.println("MAIN MENU")
		m.println("1. Book operations")
		m.println("2. Members and loans")
		m.println("q. Quit")
		m.println(strings.Repeat("=", 30))

		choice, ok := m.prompt("Choice: ")
		if !ok {
			m.println()
			m.println("Goodbye!")
			return
		}

		switch choice {
		case "q":
			m.println("Goodbye!")
			return
		case "1":
			if !m.bookMenu() {
				m.println("Goodbye!")
				return
			}
		case "2":
			if !m.memberMenu() {
				m.println("Goodbye!")
				return
			}
		default:
			m.println("Unknown choice. Enter 1, 2 or q.")
		}
	}
}

// bookMenu returns false when input ran out.
func (m *menu) bookMenu() bool {
	for {
		m.println("\n--- Books ---")
		m.println("1- List | 2- Add | 3- Delete (by ID) | 4- Update pages | b- Back")
		choice, ok := m.prompt("Action: ")
		if !ok {
			return false
		}

		switch choice {
		case "b":
			return true
		case "1":
			m.listBooks()
		case "2":
			m.addBook()
		case "3":
			m.deleteBook()
		case "4":
			m.updatePages()
		default:
			m.println("Unknown action.")
		}
	}
}

// memberMenu returns false when input ran out.
func (m *menu) memberMenu() bool {
	for {
		m.println("\n--- Members and Loans ---")
		m.println("1- List members | 2- Add member | 3- Delete member")
		m.println("4- Lend book (by ID) | 5- Take return (by ID) | 6- Who has what? | b- Back")
		choice, ok := m.prompt("Action: ")
		if !ok {
			return false
		}

		switch choice {
		case "b":
			return true
		case "1":
			m.listMembers()
		case "2":
			m.addMember()
		case "3":
			m.deleteMember()
		case "4":
			m.borrowBook()
		case "5":
			m.returnBook()
		case "6":
			m.statusReport()
		default:
			m.println("Unknown action.")
		}
	}
}

// ------------------ Book actions ------------------

func (m *menu) listBooks() {
	books, err := m.mgr.GetAllBooks()
	if err != nil {
		m.printf("Error: %v\n", err)
		return
	}
	m.println("\n--- BOOKS ---")
	if len(books) == 0 {
		m.println("Library is empty.")
		return
	}
	for _, b := range books {
		m.println(library.PrettyBook(b))
	}
}

func (m *menu) addBook() {
	title, ok := m.prompt("Title: ")
	if !ok {
		return
	}
	author, ok := m.prompt("Author: ")
	if !ok {
		return
	}
	publisher, ok := m.prompt("Publisher: ")
	if !ok {
		return
	}
	pages, ok := m.promptInt("Pages: ", "Please enter the page count as a number.")
	if !ok {
		return
	}

	b, err := m.mgr.AddBook(title, author, publisher, int(pages))
	if err != nil {
		m.printf("Error adding book: %v\n", err)
		return
	}
	m.printf("Book added: %s (ID: %d)\n", b.Title, b.ID)
}

func (m *menu) deleteBook() {
	m.listBooks()
	id, ok := m.promptInt("Book ID to delete: ", "Please enter a number.")
	if !ok {
		return
	}

	matched, err := m.mgr.DeleteBook(id)
	if err != nil {
		m.printf("Error deleting book: %v\n", err)
		return
	}
	if !matched {
		m.printf("No book with ID %d; nothing deleted.\n", id)
		return
	}
	m.printf("Book (ID: %d) deleted.\n", id)
}

func (m *menu) updatePages() {
	m.listBooks()
	id, ok := m.promptInt("Book ID to update: ", "Please enter a number.")
	if !ok {
		return
	}
	pages, ok := m.promptInt("New page count: ", "Please enter a number.")
	if !ok {
		return
	}

	matched, err := m.mgr.UpdateBookPages(id, int(pages))
	if err != nil {
		m.printf("Error updating book: %v\n", err)
		return
	}
	if !matched {
		m.printf("No book with ID %d; nothing updated.\n", id)
		return
	}
	m.printf("Book (ID: %d) updated.\n", id)
}

// ------------------ Member and loan actions ------------------

func (m *menu) listMembers() {
	members, err := m.mgr.GetAllMembers()
	if err != nil {
		m.printf("Error: %v\n", err)
		return
	}
	m.println("\n--- MEMBERS ---")
	if len(members) == 0 {
		m.println("No registered members.")
		return
	}
	for _, mem := range members {
		m.println(library.PrettyMember(mem))
	}
}

func (m *menu) addMember() {
	name, ok := m.prompt("Name: ")
	if !ok {
		return
	}
	surname, ok := m.prompt("Surname: ")
	if !ok {
		return
	}

	mem, err := m.mgr.AddMember(name, surname)
	if err != nil {
		m.printf("Error adding member: %v\n", err)
		return
	}
	m.printf("New member added: %s (ID: %d)\n", mem.FullName(), mem.ID)
}

func (m *menu) deleteMember() {
	m.listMembers()
	id, ok := m.promptInt("Member ID to delete: ", "Please enter a number.")
	if !ok {
		return
	}

	err := m.mgr.DeleteMember(id)
	var loans *library.ActiveLoansError
	switch {
	case err == nil:
		m.printf("Member (ID: %d) deleted.\n", id)
	case errors.Is(err, library.ErrMemberNotFound):
		m.println("Invalid member ID.")
	case errors.As(err, &loans):
		m.printf("This member cannot be deleted: they currently hold %d book(s).\n", loans.Count)
		m.println("Please have the books returned first.")
	default:
		m.printf("Error deleting member: %v\n", err)
	}
}

func (m *menu) borrowBook() {
	m.listBooks()
	bookID, ok := m.promptInt("Book ID to lend: ", "Please enter a number.")
	if !ok {
		return
	}
	memberID, ok := m.promptInt("Borrowing member ID: ", "Please enter a number.")
	if !ok {
		return
	}

	err := m.mgr.BorrowBook(bookID, memberID)
	switch {
	case err == nil:
		m.printf("Book (ID: %d) lent to member %d.\n", bookID, memberID)
	case errors.Is(err, library.ErrBookNotFound):
		m.println("Invalid book ID!")
	case errors.Is(err, library.ErrMemberNotFound):
		m.printf("Member %d not found!\n", memberID)
	case errors.Is(err, library.ErrAlreadyBorrowed):
		m.println("This book has already been lent to someone else.")
	default:
		m.printf("Error lending book: %v\n", err)
	}
}

func (m *menu) returnBook() {
	bookID, ok := m.promptInt("Book ID to return: ", "Invalid ID.")
	if !ok {
		return
	}

	err := m.mgr.ReturnBook(bookID)
	switch {
	case err == nil:
		m.printf("Return accepted: book (ID: %d) is back on the shelf.\n", bookID)
	case errors.Is(err, library.ErrBookNotFound):
		m.println("Invalid book ID!")
	case errors.Is(err, library.ErrNotBorrowed):
		m.println("This book is already on the shelf.")
	default:
		m.printf("Error returning book: %v\n", err)
	}
}

func (m *menu) statusReport() {
	entries, err := m.mgr.StatusReport()
	if err != nil {
		m.printf("Error: %v\n", err)
		return
	}
	m.println("\n--- STATUS ---")
	if len(entries) == 0 {
		m.println("Library is empty.")
		return
	}
	for _, e := range entries {
		m.println(library.PrettyStatus(e))
	}
}
