package library

import (
	"errors"
	"testing"

	"pgregory.net/rapid"
)

func memoryDB(t *rapid.T) *Database {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	return db
}

func TestPropertyAddedBookIsListedOnShelf(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		db := memoryDB(t)
		defer db.Close()

		n := rapid.IntRange(1, 8).Draw(t, "books")
		for i := 0; i < n; i++ {
			title := rapid.StringMatching(`[A-Za-z ]{1,20}`).Draw(t, "title")
			pages := rapid.IntRange(1, 5000).Draw(t, "pages")

			b, err := db.AddBook(title, "Author", "Publisher", pages)
			if err != nil {
				t.Fatalf("add: %v", err)
			}

			books, err := db.GetAllBooks()
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			last := books[len(books)-1]
			if last.ID != b.ID || last.Title != title || last.Pages != pages || !last.OnShelf() {
				t.Fatalf("listed %+v, want on-shelf %+v", last, b)
			}
		}
	})
}

func TestPropertySecondBorrowRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		db := memoryDB(t)
		defer db.Close()

		b, _ := db.AddBook("Dune", "Herbert", "Ace", 412)
		members := rapid.IntRange(1, 5).Draw(t, "members")
		for i := 0; i < members; i++ {
			if _, err := db.AddMember("Name", "Surname"); err != nil {
				t.Fatalf("add member: %v", err)
			}
		}
		first := rapid.Int64Range(1, int64(members)).Draw(t, "first")
		second := rapid.Int64Range(1, int64(members)).Draw(t, "second")

		if err := db.BorrowBook(b.ID, first); err != nil {
			t.Fatalf("borrow: %v", err)
		}
		if err := db.BorrowBook(b.ID, second); !errors.Is(err, ErrAlreadyBorrowed) {
			t.Fatalf("second borrow: got %v, want ErrAlreadyBorrowed", err)
		}

		got, _ := db.GetBook(b.ID)
		if got.OwnerID == nil || *got.OwnerID != first {
			t.Fatalf("owner changed to %v, want %d", got.OwnerID, first)
		}
	})
}

func TestPropertyMemberDeletableOnlyWithoutLoans(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		db := memoryDB(t)
		defer db.Close()

		m, _ := db.AddMember("Ana", "Lee")
		count := rapid.IntRange(1, 6).Draw(t, "loans")
		ids := make([]int64, 0, count)
		for i := 0; i < count; i++ {
			b, _ := db.AddBook("Title", "Author", "Publisher", 100)
			if err := db.BorrowBook(b.ID, m.ID); err != nil {
				t.Fatalf("borrow: %v", err)
			}
			ids = append(ids, b.ID)
		}

		for i, id := range ids {
			err := db.DeleteMember(m.ID)
			var loans *ActiveLoansError
			if !errors.As(err, &loans) || loans.Count != count-i {
				t.Fatalf("delete with %d loans: got %v", count-i, err)
			}
			if err := db.ReturnBook(id); err != nil {
				t.Fatalf("return: %v", err)
			}
		}

		if err := db.DeleteMember(m.ID); err != nil {
			t.Fatalf("delete after returns: %v", err)
		}
	})
}
