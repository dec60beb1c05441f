package library

// Book represents a catalogued book and who, if anyone, currently holds it.
// OwnerID is nil while the book is on the shelf.
type Book struct {
	ID        int64  `db:"id" json:"id"`
	Title     string `db:"title" json:"title"`
	Author    string `db:"author" json:"author"`
	Publisher string `db:"publisher" json:"publisher"`
	Pages     int    `db:"pages" json:"pages"`
	OwnerID   *int64 `db:"owner_id" json:"owner_id"`
}

// OnShelf reports whether the book is available to borrow.
func (b *Book) OnShelf() bool { return b.OwnerID == nil }

// NewBook holds the fields needed to add a book.
type NewBook struct {
	Title     string
	Author    string
	Publisher string
	Pages     int
}

// Member represents a registered library member.
type Member struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Surname string `db:"surname" json:"surname"`
}

// FullName joins given and family name.
func (m *Member) FullName() string { return m.Name + " " + m.Surname }

// StatusEntry is one line of the status report: a book joined with its borrower.
type StatusEntry struct {
	BookID          int64   `db:"book_id" json:"book_id"`
	Title           string  `db:"title" json:"title"`
	BorrowerName    *string `db:"name" json:"borrower_name"`
	BorrowerSurname *string `db:"surname" json:"borrower_surname"`
}

// Available reports whether nobody holds the book.
func (s *StatusEntry) Available() bool { return s.BorrowerName == nil }

// Borrower renders the holder's full name, or "available" for on-shelf books.
func (s *StatusEntry) Borrower() string {
	if s.Available() {
		return "available"
	}
	surname := ""
	if s.BorrowerSurname != nil {
		surname = *s.BorrowerSurname
	}
	return *s.BorrowerName + " " + surname
}
