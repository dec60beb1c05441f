package library

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const (
	tableBooks   = "books"
	tableMembers = "members"

	colID        = "id"
	colTitle     = "title"
	colAuthor    = "author"
	colPublisher = "publisher"
	colPages     = "pages"
	colOwnerID   = "owner_id"
	colName      = "name"
	colSurname   = "surname"
)

var dialect = goqu.Dialect("sqlite3")

var bookColumns = []any{colID, colTitle, colAuthor, colPublisher, colPages, colOwnerID}

// Database provides high-level helpers around a SQLite connection.
type Database struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Option configures a Database.
type Option func(*Database)

// WithLogger routes the database's log output to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Database) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDatabase opens (or creates) the SQLite database at dbPath and applies
// schema migrations. dbPath may be ":memory:".
func NewDatabase(dbPath string, opts ...Option) (*Database, error) {
	d := &Database{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(d)
	}

	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	// Loans are guarded in code, so foreign keys stay off.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One handle for the life of the process; also keeps :memory: databases intact.
	db.SetMaxOpenConns(1)

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	d.db = db

	d.logger.Debug("database opened", "path", dbPath, "schema_version", schemaVersion)
	return d, nil
}

// Close closes the DB.
func (d *Database) Close() error {
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sqlx.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS members (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            surname TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS books (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            publisher TEXT NOT NULL,
            pages INT NOT NULL,
            owner_id INT
        );`,
		`CREATE INDEX IF NOT EXISTS idx_books_owner ON books(owner_id);`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Books
// ---------------------------------------------------------------------------

func insertBookSQL(nb NewBook) (string, []any, error) {
	return dialect.Insert(tableBooks).
		Cols(colTitle, colAuthor, colPublisher, colPages).
		Vals(goqu.Vals{nb.Title, nb.Author, nb.Publisher, nb.Pages}).
		Prepared(true).
		ToSQL()
}

// AddBook inserts an on-shelf book and returns it with its new ID.
func (d *Database) AddBook(title, author, publisher string, pages int) (*Book, error) {
	nb := NewBook{Title: title, Author: author, Publisher: publisher, Pages: pages}
	query, args, err := insertBookSQL(nb)
	if err != nil {
		return nil, fmt.Errorf("build insert book: %w", err)
	}
	res, err := d.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Book{ID: id, Title: title, Author: author, Publisher: publisher, Pages: pages}, nil
}

// AddBooks inserts all books in one transaction; either every book is stored or none is.
func (d *Database) AddBooks(books []NewBook) ([]*Book, error) {
	tx, err := d.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	added := make([]*Book, 0, len(books))
	for _, nb := range books {
		query, args, err := insertBookSQL(nb)
		if err != nil {
			return nil, fmt.Errorf("build insert book: %w", err)
		}
		res, err := tx.Exec(query, args...)
		if err != nil {
			return nil, fmt.Errorf("insert book %q: %w", nb.Title, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		added = append(added, &Book{ID: id, Title: nb.Title, Author: nb.Author, Publisher: nb.Publisher, Pages: nb.Pages})
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return added, nil
}

func getBook(q sqlx.Queryer, id int64) (*Book, error) {
	query, args, err := dialect.From(tableBooks).
		Select(bookColumns...).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select book: %w", err)
	}
	var b Book
	if err := sqlx.Get(q, &b, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &b, nil
}

// GetBook fetches a single book, or ErrBookNotFound.
func (d *Database) GetBook(id int64) (*Book, error) { return getBook(d.db, id) }

// GetAllBooks returns every book in insertion order.
func (d *Database) GetAllBooks() ([]*Book, error) {
	query, args, err := dialect.From(tableBooks).
		Select(bookColumns...).
		Order(goqu.C(colID).Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select books: %w", err)
	}
	var books []*Book
	if err := d.db.Select(&books, query, args...); err != nil {
		return nil, err
	}
	return books, nil
}

// UpdateBookPages sets the page count of a book. A missing book is not an
// error; the returned count is then zero.
func (d *Database) UpdateBookPages(bookID int64, pages int) (int64, error) {
	query, args, err := dialect.Update(tableBooks).
		Set(goqu.Record{colPages: pages}).
		Where(goqu.C(colID).Eq(bookID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build update pages: %w", err)
	}
	res, err := d.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteBook removes a book whether or not it is on loan. A missing book is
// not an error; the returned count is then zero.
func (d *Database) DeleteBook(bookID int64) (int64, error) {
	query, args, err := dialect.Delete(tableBooks).
		Where(goqu.C(colID).Eq(bookID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete book: %w", err)
	}
	res, err := d.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---------------------------------------------------------------------------
// Members
// ---------------------------------------------------------------------------

// AddMember inserts a member and returns it with its new ID.
func (d *Database) AddMember(name, surname string) (*Member, error) {
	query, args, err := dialect.Insert(tableMembers).
		Cols(colName, colSurname).
		Vals(goqu.Vals{name, surname}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build insert member: %w", err)
	}
	res, err := d.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Member{ID: id, Name: name, Surname: surname}, nil
}

func getMember(q sqlx.Queryer, id int64) (*Member, error) {
	query, args, err := dialect.From(tableMembers).
		Select(colID, colName, colSurname).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select member: %w", err)
	}
	var m Member
	if err := sqlx.Get(q, &m, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetMember fetches a single member, or ErrMemberNotFound.
func (d *Database) GetMember(id int64) (*Member, error) { return getMember(d.db, id) }

// GetAllMembers returns every member in insertion order.
func (d *Database) GetAllMembers() ([]*Member, error) {
	query, args, err := dialect.From(tableMembers).
		Select(colID, colName, colSurname).
		Order(goqu.C(colID).Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select members: %w", err)
	}
	var members []*Member
	if err := d.db.Select(&members, query, args...); err != nil {
		return nil, err
	}
	return members, nil
}

func countLoans(q sqlx.Queryer, memberID int64) (int, error) {
	query, args, err := dialect.From(tableBooks).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(colOwnerID).Eq(memberID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count loans: %w", err)
	}
	var n int
	if err := sqlx.Get(q, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}

// DeleteMember removes a member who holds no books. It fails with
// ErrMemberNotFound for an unknown ID and with *ActiveLoansError while the
// member still has books out.
func (d *Database) DeleteMember(memberID int64) error {
	tx, err := d.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := getMember(tx, memberID); err != nil {
		return err
	}

	loans, err := countLoans(tx, memberID)
	if err != nil {
		return err
	}
	if loans > 0 {
		return &ActiveLoansError{MemberID: memberID, Count: loans}
	}

	query, args, err := dialect.Delete(tableMembers).
		Where(goqu.C(colID).Eq(memberID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete member: %w", err)
	}
	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}
	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Circulation
// ---------------------------------------------------------------------------

func setOwner(tx *sqlx.Tx, bookID int64, owner any) error {
	query, args, err := dialect.Update(tableBooks).
		Set(goqu.Record{colOwnerID: owner}).
		Where(goqu.C(colID).Eq(bookID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update owner: %w", err)
	}
	_, err = tx.Exec(query, args...)
	return err
}

// BorrowBook lends an on-shelf book to a member. Checks run in order: book
// exists, member exists, book not already lent.
func (d *Database) BorrowBook(bookID, memberID int64) error {
	tx, err := d.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	book, err := getBook(tx, bookID)
	if err != nil {
		return err
	}
	if _, err := getMember(tx, memberID); err != nil {
		return err
	}
	if !book.OnShelf() {
		return fmt.Errorf("book %d: %w", bookID, ErrAlreadyBorrowed)
	}

	if err := setOwner(tx, bookID, memberID); err != nil {
		return err
	}
	return tx.Commit()
}

// ReturnBook puts a lent book back on the shelf.
func (d *Database) ReturnBook(bookID int64) error {
	tx, err := d.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	book, err := getBook(tx, bookID)
	if err != nil {
		return err
	}
	if book.OnShelf() {
		return fmt.Errorf("book %d: %w", bookID, ErrNotBorrowed)
	}

	if err := setOwner(tx, bookID, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// StatusReport lists every book with its borrower, in insertion order.
func (d *Database) StatusReport() ([]*StatusEntry, error) {
	query, args, err := dialect.From(goqu.T(tableBooks).As("b")).
		LeftJoin(
			goqu.T(tableMembers).As("m"),
			goqu.On(goqu.I("b."+colOwnerID).Eq(goqu.I("m."+colID))),
		).
		Select(
			goqu.I("b."+colID).As("book_id"),
			goqu.I("b."+colTitle).As(colTitle),
			goqu.I("m."+colName).As(colName),
			goqu.I("m."+colSurname).As(colSurname),
		).
		Order(goqu.I("b." + colID).Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build status report: %w", err)
	}
	var entries []*StatusEntry
	if err := d.db.Select(&entries, query, args...); err != nil {
		return nil, err
	}
	return entries, nil
}
