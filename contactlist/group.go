package contactlist

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// SentinelKey is the group for contacts without a usable display name.
const SentinelKey = "#"

// Group is one section of the list.
type Group struct {
	Key      string
	Contacts []Contact
}

// GroupedContacts is an ordered list of sections. Sections appear in the
// order their key was first seen.
type GroupedContacts []Group

// Lookup returns the contacts filed under key.
func (g GroupedContacts) Lookup(key string) ([]Contact, bool) {
	for _, group := range g {
		if group.Key == key {
			return group.Contacts, true
		}
	}
	return nil, false
}

// Keys returns the section keys in order.
func (g GroupedContacts) Keys() []string {
	keys := make([]string, 0, len(g))
	for _, group := range g {
		keys = append(keys, group.Key)
	}
	return keys
}

// Count returns the total number of contacts across all sections.
func (g GroupedContacts) Count() int {
	n := 0
	for _, group := range g {
		n += len(group.Contacts)
	}
	return n
}

// Find returns the contact with the given ID.
func (g GroupedContacts) Find(id string) (Contact, bool) {
	for _, group := range g {
		for _, contact := range group.Contacts {
			if contact.ID == id {
				return contact, true
			}
		}
	}
	return Contact{}, false
}

// Key returns the section key for c: the upper-cased first character of
// the display name, or [SentinelKey] when the name is blank.
func Key(c Contact) string {
	name := strings.TrimLeftFunc(norm.NFC.String(c.DisplayName), unicode.IsSpace)
	if name == "" {
		return SentinelKey
	}
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return SentinelKey
	}
	return string(unicode.ToUpper(r))
}

// Group partitions contacts by [Key], preserving input order inside each
// section.
func Group(contacts []Contact) GroupedContacts {
	grouped := GroupedContacts{}
	index := make(map[string]int)
	for _, contact := range contacts {
		key := Key(contact)
		i, ok := index[key]
		if !ok {
			i = len(grouped)
			index[key] = i
			grouped = append(grouped, Group{Key: key})
		}
		grouped[i].Contacts = append(grouped[i].Contacts, contact)
	}
	return grouped
}
