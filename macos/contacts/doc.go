// Package contacts reads the macOS AddressBook for the contact list.
//
// The package exposes two adapters:
//
//   - Source: a contactlist.Source that queries every AddressBook SQLite
//     database (the local store plus one per synced account) read-only.
//   - Platform: a permission.Platform that probes filesystem access to the
//     AddressBook and deep-links to System Settings when access is missing.
//
// # Data Model
//
// Rows come from ZABCDRECORD joined to ZABCDPHONENUMBER, so only contacts
// with at least one phone number are listed, once per number. Display
// names are "given family", falling back to the organization. When the
// record has an image in the Images directory next to the database, its
// file URL is reported as the photo URI. AddressBook keeps no separate
// thumbnail file (the thumbnail is an image blob inside the database), so
// the same file URL is reported as the thumbnail URI.
//
// # Authorization
//
// Reading the database requires Full Disk Access (or Contacts access for
// the host app). There is no programmatic prompt: RequestAccess-style
// flows are modeled as a re-probe, and the rationale path opens the
// privacy pane with SettingsURL.
//
// # Composition Example
//
//	dir, err := contacts.DefaultDir()
//	if err != nil {
//		// handle
//	}
//	store := uistate.New()
//	controller := session.New(contacts.NewPlatform(dir), contacts.NewSource(dir, logger), store, session.Options{})
//	defer controller.Close()
//	controller.Start()
package contacts
