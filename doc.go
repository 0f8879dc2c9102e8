// Package contactsapp is an index for the packages that make up the
// contacts browser.
//
// This root package is documentation-only. Import specific subpackages.
//
// Available subpackages:
//   - github.com/spachava753/contactsapp/contactlist
//     Contact records, the loader with first-seen dedupe, and grouping by
//     initial.
//   - github.com/spachava753/contactsapp/permission
//     The contacts permission state machine and the gate that runs it
//     against a platform.
//   - github.com/spachava753/contactsapp/uistate
//     Versioned UI state with ordered delivery to subscribers.
//   - github.com/spachava753/contactsapp/session
//     Wires the gate, loader, and store into one controller.
//   - github.com/spachava753/contactsapp/config
//     YAML and environment configuration.
//   - github.com/spachava753/contactsapp/browser
//     Opening URLs with the platform opener.
//   - github.com/spachava753/contactsapp/macos/contacts
//     AddressBook database source and file-access permission probe.
//   - github.com/spachava753/contactsapp/macos/messages
//     Calling, composing, and sending messages to a contact.
//
// Discovery workflow:
//   - Run: go doc github.com/spachava753/contactsapp
//   - Then drill in with:
//     go doc github.com/spachava753/contactsapp/session
//     go doc github.com/spachava753/contactsapp/macos/contacts
package contactsapp
