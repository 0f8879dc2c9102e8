package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/spachava753/contactsapp/contactlist"
)

const addressBookDBName = "AddressBook-v22.abcddb"

// Source implements [contactlist.Source] by reading every AddressBook
// database under a directory: the local one and one per account in
// Sources/. Rows are one per phone number, so a contact with several
// numbers appears several times with the same ID.
type Source struct {
	dir    string
	logger *slog.Logger
}

// NewSource returns a Source reading the AddressBook at dir. A nil logger
// discards output.
func NewSource(dir string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Source{dir: dir, logger: logger}
}

// Records returns raw phone rows from all databases.
func (s *Source) Records(ctx context.Context, opts contactlist.QueryOptions) ([]contactlist.Record, error) {
	paths, err := s.databasePaths()
	if err != nil {
		return nil, err
	}

	var records []contactlist.Record
	for _, path := range paths {
		rows, err := queryDatabase(ctx, path, opts)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("addressbook database read", "path", path, "rows", len(rows))
		records = append(records, rows...)
	}

	// Each database is already ordered; merge them into one ordering.
	if opts.SortByDisplayName && len(paths) > 1 {
		sort.SliceStable(records, func(i, j int) bool {
			return strings.ToLower(records[i].DisplayName) < strings.ToLower(records[j].DisplayName)
		})
	}
	return records, nil
}

func (s *Source) databasePaths() ([]string, error) {
	var paths []string
	for _, pattern := range []string{
		filepath.Join(s.dir, addressBookDBName),
		filepath.Join(s.dir, "Sources", "*", addressBookDBName),
	} {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("contacts: globbing %s: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		if _, err := os.ReadDir(s.dir); errors.Is(err, fs.ErrPermission) {
			return nil, &Error{Code: ErrorCodePermissionDenied, Message: s.dir}
		}
		return nil, &Error{Code: ErrorCodeNotFound, Message: fmt.Sprintf("no %s under %s", addressBookDBName, s.dir)}
	}
	return paths, nil
}

func queryDatabase(ctx context.Context, path string, opts contactlist.QueryOptions) ([]contactlist.Record, error) {
	db, err := openAddressBookDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	order := "r.Z_PK, p.ZORDERINGINDEX"
	if opts.SortByDisplayName {
		order = "display_name COLLATE NOCASE, r.Z_PK, p.ZORDERINGINDEX"
	}

	query := fmt.Sprintf(`
SELECT
	COALESCE(r.ZUNIQUEID, ''),
	COALESCE(NULLIF(TRIM(COALESCE(r.ZFIRSTNAME, '') || ' ' || COALESCE(r.ZLASTNAME, '')), ''), r.ZORGANIZATION, '') AS display_name,
	COALESCE(p.ZFULLNUMBER, '')
FROM ZABCDRECORD r
JOIN ZABCDPHONENUMBER p ON p.ZOWNER = r.Z_PK
ORDER BY %s;
`, order)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &Error{Code: ErrorCodeStore, Message: fmt.Sprintf("sqlite query failed: %v", err)}
	}
	defer rows.Close()

	imagesDir := filepath.Join(filepath.Dir(path), "Images")
	records := make([]contactlist.Record, 0, 64)
	for rows.Next() {
		var id, name, number sql.NullString
		if err := rows.Scan(&id, &name, &number); err != nil {
			return nil, &Error{Code: ErrorCodeStore, Message: fmt.Sprintf("scanning sqlite row failed: %v", err)}
		}
		// The thumbnail is only kept as a blob inside the database, so the
		// image file doubles as the thumbnail.
		photo := photoURI(imagesDir, id.String)
		records = append(records, contactlist.Record{
			ID:                id.String,
			DisplayName:       strings.TrimSpace(name.String),
			PhoneNumber:       strings.TrimSpace(number.String),
			PhotoURI:          photo,
			PhotoThumbnailURI: photo,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Code: ErrorCodeStore, Message: fmt.Sprintf("iterating sqlite rows failed: %v", err)}
	}
	return records, nil
}

func openAddressBookDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", strings.ReplaceAll(path, " ", "%20"))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, &Error{Code: ErrorCodeStore, Message: fmt.Sprintf("opening sqlite database failed: %v", err)}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		if errors.Is(err, fs.ErrPermission) {
			return nil, &Error{Code: ErrorCodePermissionDenied, Message: path}
		}
		return nil, &Error{Code: ErrorCodeStore, Message: fmt.Sprintf("connecting to sqlite database failed: %v", err)}
	}
	return db, nil
}

// photoURI returns a file URL for the contact image, if one is stored.
// Images are named after the record's unique ID without its ":ABPerson"
// suffix.
func photoURI(imagesDir string, uniqueID string) string {
	name, _, _ := strings.Cut(uniqueID, ":")
	if name == "" || strings.ContainsAny(name, `/\`) {
		return ""
	}
	path := filepath.Join(imagesDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	return (&url.URL{Scheme: "file", Path: path}).String()
}
