package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/spachava753/contactsapp/contactlist"
)

// render writes one header per section followed by its contacts. Styling
// follows the color profile of w, so non-terminal output is plain text.
func render(w io.Writer, grouped contactlist.GroupedContacts) {
	renderer := lipgloss.NewRenderer(w)
	header := renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	name := renderer.NewStyle().Width(28)
	phone := renderer.NewStyle().Width(20)
	id := renderer.NewStyle().Faint(true)

	if len(grouped) == 0 {
		fmt.Fprintln(w, "No contacts.")
		return
	}
	for _, group := range grouped {
		fmt.Fprintln(w, header.Render(group.Key))
		for _, contact := range group.Contacts {
			displayName := contact.DisplayName
			if displayName == "" {
				displayName = "(no name)"
			}
			fmt.Fprintf(w, "  %s%s%s\n",
				name.Render(displayName),
				phone.Render(contact.PhoneNumber),
				id.Render(contact.ID),
			)
		}
	}
}
