package contacts

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"

	"github.com/spachava753/contactsapp/contactlist"
	"github.com/spachava753/contactsapp/permission"
)

type fixtureRecord struct {
	pk           int
	uniqueID     any
	first        any
	last         any
	organization any
}

type fixturePhone struct {
	owner  int
	number any
	order  int
}

func writeFixtureDB(t *testing.T, path string, records []fixtureRecord, phones []fixturePhone) {
	t.Helper()
	be.Err(t, os.MkdirAll(filepath.Dir(path), 0o755), nil)

	db, err := sql.Open("sqlite3", path)
	be.Err(t, err, nil)
	defer db.Close()

	_, err = db.Exec(`
CREATE TABLE ZABCDRECORD (
	Z_PK INTEGER PRIMARY KEY,
	ZUNIQUEID VARCHAR,
	ZFIRSTNAME VARCHAR,
	ZLASTNAME VARCHAR,
	ZORGANIZATION VARCHAR
);
CREATE TABLE ZABCDPHONENUMBER (
	Z_PK INTEGER PRIMARY KEY,
	ZOWNER INTEGER,
	ZFULLNUMBER VARCHAR,
	ZORDERINGINDEX INTEGER
);`)
	be.Err(t, err, nil)

	for _, r := range records {
		_, err = db.Exec(`INSERT INTO ZABCDRECORD (Z_PK, ZUNIQUEID, ZFIRSTNAME, ZLASTNAME, ZORGANIZATION) VALUES (?, ?, ?, ?, ?)`,
			r.pk, r.uniqueID, r.first, r.last, r.organization)
		be.Err(t, err, nil)
	}
	for _, p := range phones {
		_, err = db.Exec(`INSERT INTO ZABCDPHONENUMBER (ZOWNER, ZFULLNUMBER, ZORDERINGINDEX) VALUES (?, ?, ?)`,
			p.owner, p.number, p.order)
		be.Err(t, err, nil)
	}
}

func TestSourceRecords(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, addressBookDBName)
	writeFixtureDB(t, dbPath,
		[]fixtureRecord{
			{pk: 1, uniqueID: "B0B:ABPerson", first: "Bob", last: "Stone"},
			{pk: 2, uniqueID: "A11:ABPerson", first: "alice", last: nil},
			{pk: 3, uniqueID: "0A6:ABPerson", first: nil, last: nil, organization: "Acme"},
			{pk: 4, uniqueID: "N0P:ABPerson", first: "Nophone"},
			{pk: 5, uniqueID: nil, first: nil},
		},
		[]fixturePhone{
			{owner: 1, number: "111", order: 0},
			{owner: 1, number: "999", order: 1},
			{owner: 2, number: "222", order: 0},
			{owner: 3, number: nil, order: 0},
			{owner: 5, number: "555", order: 0},
		},
	)
	be.Err(t, os.MkdirAll(filepath.Join(dir, "Images"), 0o755), nil)
	be.Err(t, os.WriteFile(filepath.Join(dir, "Images", "B0B"), []byte("jpeg"), 0o644), nil)

	records, err := NewSource(dir, nil).Records(context.Background(), contactlist.QueryOptions{SortByDisplayName: true})
	be.Err(t, err, nil)
	be.Equal(t, len(records), 5)

	// Blank name sorts first, then case-insensitive by display name.
	be.Equal(t, records[0].ID, "")
	be.Equal(t, records[0].DisplayName, "")
	be.Equal(t, records[1].DisplayName, "Acme")
	be.Equal(t, records[1].PhoneNumber, "")
	be.Equal(t, records[2].DisplayName, "alice")
	be.Equal(t, records[3].DisplayName, "Bob Stone")
	be.Equal(t, records[3].PhoneNumber, "111")
	be.Equal(t, records[4].ID, "B0B:ABPerson")
	be.Equal(t, records[4].PhoneNumber, "999")

	be.Equal(t, records[3].PhotoURI, "file://"+filepath.ToSlash(filepath.Join(dir, "Images", "B0B")))
	be.Equal(t, records[3].PhotoThumbnailURI, records[3].PhotoURI)
	be.Equal(t, records[2].PhotoURI, "")
	be.Equal(t, records[2].PhotoThumbnailURI, "")

	contacts := contactlist.Dedupe(records)
	be.Equal(t, len(contacts), 4)
}

func TestSourceMergesAccountDatabases(t *testing.T) {
	dir := t.TempDir()
	writeFixtureDB(t, filepath.Join(dir, addressBookDBName),
		[]fixtureRecord{{pk: 1, uniqueID: "Z:ABPerson", first: "Zed"}},
		[]fixturePhone{{owner: 1, number: "1"}},
	)
	writeFixtureDB(t, filepath.Join(dir, "Sources", "ACCOUNT-1", addressBookDBName),
		[]fixtureRecord{{pk: 1, uniqueID: "M:ABPerson", first: "Mia"}},
		[]fixturePhone{{owner: 1, number: "2"}},
	)

	records, err := NewSource(dir, nil).Records(context.Background(), contactlist.QueryOptions{SortByDisplayName: true})
	be.Err(t, err, nil)
	be.Equal(t, len(records), 2)
	be.Equal(t, records[0].DisplayName, "Mia")
	be.Equal(t, records[1].DisplayName, "Zed")
}

func TestSourceMissingDatabase(t *testing.T) {
	_, err := NewSource(t.TempDir(), nil).Records(context.Background(), contactlist.QueryOptions{})

	var typed *Error
	be.True(t, errors.As(err, &typed))
	be.Equal(t, typed.Code, ErrorCodeNotFound)
}

func TestSourceThroughLoader(t *testing.T) {
	dir := t.TempDir()
	writeFixtureDB(t, filepath.Join(dir, addressBookDBName),
		[]fixtureRecord{
			{pk: 1, uniqueID: "1", first: "Bob"},
			{pk: 2, uniqueID: "2", first: "alice"},
		},
		[]fixturePhone{
			{owner: 1, number: "111", order: 0},
			{owner: 1, number: "999", order: 1},
			{owner: 2, number: "222", order: 0},
		},
	)

	contacts, err := contactlist.NewLoader(NewSource(dir, nil), nil).Load(context.Background())
	be.Err(t, err, nil)

	grouped := contactlist.Group(contacts)
	be.Equal(t, grouped.Keys(), []string{"A", "B"})
	bob, ok := grouped.Find("1")
	be.True(t, ok)
	be.Equal(t, bob.PhoneNumber, "111")
}

func TestAuthorizationStatus(t *testing.T) {
	status, err := AuthorizationStatus(t.TempDir())
	be.Err(t, err, nil)
	be.Equal(t, status, AuthStatusAuthorized)

	status, err = AuthorizationStatus(filepath.Join(t.TempDir(), "missing"))
	be.Err(t, err, nil)
	be.Equal(t, status, AuthStatusRestricted)
}

func TestPlatform(t *testing.T) {
	ctx := context.Background()

	granted := NewPlatform(t.TempDir())
	status, err := granted.Status(ctx)
	be.Err(t, err, nil)
	be.Equal(t, status, permission.StatusGranted)
	outcome, err := granted.Request(ctx)
	be.Err(t, err, nil)
	be.Equal(t, outcome, permission.Outcome{Granted: true})

	missing := NewPlatform(filepath.Join(t.TempDir(), "missing"))
	status, err = missing.Status(ctx)
	be.Err(t, err, nil)
	be.Equal(t, status, permission.StatusDeniedPermanently)
	outcome, err = missing.Request(ctx)
	be.Err(t, err, nil)
	be.Equal(t, outcome, permission.Outcome{})

	var opened string
	missing.openURL = func(ctx context.Context, rawURL string) error {
		opened = rawURL
		return nil
	}
	be.Err(t, missing.OpenSettings(ctx), nil)
	be.Equal(t, opened, SettingsURL)
}

func TestPermissionStatusMapping(t *testing.T) {
	be.Equal(t, permissionStatus(AuthStatusAuthorized), permission.StatusGranted)
	be.Equal(t, permissionStatus(AuthStatusDenied), permission.StatusDeniedCanAskAgain)
	be.Equal(t, permissionStatus(AuthStatusRestricted), permission.StatusDeniedPermanently)
	be.Equal(t, permissionStatus(AuthStatusNotDetermined), permission.StatusNotDetermined)
}

func TestPhotoURIRejectsTraversal(t *testing.T) {
	be.Equal(t, photoURI(t.TempDir(), "../etc:ABPerson"), "")
	be.Equal(t, photoURI(t.TempDir(), ""), "")
}
