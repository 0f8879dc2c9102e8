// contactsapp prints the user's address book as an alphabetically
// sectioned list, after walking through the contacts permission flow.
//
// Access is checked first. If the AddressBook cannot be read, the user is
// shown a rationale and can open System Settings to grant access, then
// press Enter to re-check. Once contacts are loaded, --call or --message
// act on one contact by ID.
//
// Usage:
//
//	contactsapp [--config FILE] [--addressbook-dir DIR] [--call ID | --message ID [--send TEXT]]
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/spachava753/contactsapp/config"
	"github.com/spachava753/contactsapp/contactlist"
	"github.com/spachava753/contactsapp/macos/contacts"
	"github.com/spachava753/contactsapp/macos/messages"
	"github.com/spachava753/contactsapp/permission"
	"github.com/spachava753/contactsapp/session"
	"github.com/spachava753/contactsapp/uistate"
)

var errAccessDenied = errors.New("contacts access denied")

const rationaleText = `contactsapp needs to read your AddressBook to list contacts.
Grant access to this terminal under System Settings -> Privacy & Security.`

type options struct {
	configPath     string
	addressBookDir string
	logLevel       string
	rationale      string
	callID         string
	messageID      string
	sendText       string
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options
	flagSet := pflag.NewFlagSet("contactsapp", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	flagSet.StringVar(&opts.addressBookDir, "addressbook-dir", "", "AddressBook directory (default: ~/Library/Application Support/AddressBook)")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flagSet.StringVar(&opts.rationale, "rationale", "", `what accepting the permission prompt does: "settings" or "request"`)
	flagSet.StringVar(&opts.callID, "call", "", "call the contact with this ID after loading")
	flagSet.StringVar(&opts.messageID, "message", "", "message the contact with this ID after loading")
	flagSet.StringVar(&opts.sendText, "send", "", "with --message, send this text instead of opening a draft")

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if opts.callID != "" && opts.messageID != "" {
		return errors.New("--call and --message are mutually exclusive")
	}
	if opts.sendText != "" && opts.messageID == "" {
		return errors.New("--send requires --message")
	}

	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	dir := cfg.AddressBookDir
	if dir == "" {
		dir, err = contacts.DefaultDir()
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	permissions := make(chan permission.State, 16)
	store := uistate.New()
	defer store.Close()
	sub := store.Subscribe()
	defer sub.Close()

	controller := session.New(contacts.NewPlatform(dir), contacts.NewSource(dir, logger), store, session.Options{
		Rationale:   cfg.RationaleAction,
		LoadTimeout: time.Duration(cfg.LoadTimeout),
		Logger:      logger,
		OnPermission: func(state permission.State) {
			select {
			case permissions <- state:
			case <-ctx.Done():
			}
		},
	})
	defer func() {
		cancel()
		controller.Close()
	}()

	snapshots := make(chan uistate.Snapshot)
	go func() {
		defer close(snapshots)
		for {
			snapshot, err := sub.Next(ctx)
			if err != nil {
				return
			}
			select {
			case snapshots <- snapshot:
			case <-ctx.Done():
				return
			}
		}
	}()

	interactive := false
	if f, ok := stdin.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	input := bufio.NewReader(stdin)

	controller.Start()

	announcedLoading := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case state := <-permissions:
			switch state {
			case permission.StateAwaitingUserDecision:
				if !interactive || !confirm(input, stderr, rationaleText+"\nOpen settings now? [y/N] ") {
					controller.DismissRationale()
					continue
				}
				controller.AcceptRationale()
				if cfg.RationaleAction == permission.RationaleOpenSettings {
					fmt.Fprint(stderr, "Press Enter after granting access... ")
					if _, err := input.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
						return err
					}
					controller.Resume()
				}
			case permission.StateDenied:
				return errAccessDenied
			}

		case snapshot, ok := <-snapshots:
			if !ok {
				return ctx.Err()
			}
			if snapshot.Loading {
				if !announcedLoading && controller.Permission() == permission.StateGranted {
					fmt.Fprintln(stderr, "Loading contacts...")
					announcedLoading = true
				}
				continue
			}
			render(stdout, snapshot.Contacts)
			return act(ctx, snapshot.Contacts, opts)
		}
	}
}

func resolveConfig(opts options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.addressBookDir != "" {
		cfg.AddressBookDir = opts.addressBookDir
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.rationale != "" {
		cfg.RationaleAction = permission.RationaleAction(opts.rationale)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func confirm(input *bufio.Reader, w io.Writer, question string) bool {
	fmt.Fprint(w, question)
	answer, err := input.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func act(ctx context.Context, grouped contactlist.GroupedContacts, opts options) error {
	id := opts.callID
	if id == "" {
		id = opts.messageID
	}
	if id == "" {
		return nil
	}

	contact, ok := grouped.Find(id)
	if !ok {
		return fmt.Errorf("no contact with id %q", id)
	}
	if contact.PhoneNumber == "" {
		return fmt.Errorf("contact %q has no phone number", id)
	}

	switch {
	case opts.callID != "":
		return messages.Call(ctx, contact.PhoneNumber)
	case opts.sendText != "":
		return messages.Send(ctx, contact.PhoneNumber, opts.sendText)
	default:
		return messages.Compose(ctx, contact.PhoneNumber)
	}
}
