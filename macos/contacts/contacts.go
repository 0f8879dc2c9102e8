package contacts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spachava753/contactsapp/browser"
	"github.com/spachava753/contactsapp/permission"
)

const (
	addressBookRelativePath = "Library/Application Support/AddressBook"

	// SettingsURL opens the Full Disk Access pane, where the terminal or
	// host app can be allowed to read the AddressBook database.
	SettingsURL = "x-apple.systempreferences:com.apple.preference.security?Privacy_AllFiles"
)

// AuthStatus describes read access to the AddressBook database for the
// current process.
type AuthStatus string

const (
	// AuthStatusNotDetermined indicates access has not been probed yet.
	AuthStatusNotDetermined AuthStatus = "not_determined"
	// AuthStatusRestricted indicates there is no AddressBook to grant access to.
	AuthStatusRestricted AuthStatus = "restricted"
	// AuthStatusDenied indicates the OS refused access.
	AuthStatusDenied AuthStatus = "denied"
	// AuthStatusAuthorized indicates the AddressBook can be read.
	AuthStatusAuthorized AuthStatus = "authorized"
)

// ErrorCode classifies AddressBook errors.
type ErrorCode string

const (
	// ErrorCodePermissionDenied indicates authorization is missing.
	ErrorCodePermissionDenied ErrorCode = "permission_denied"
	// ErrorCodeNotFound indicates no AddressBook database exists.
	ErrorCodeNotFound ErrorCode = "not_found"
	// ErrorCodeStore indicates a storage/backend failure.
	ErrorCodeStore ErrorCode = "store"
	// ErrorCodeUnknown indicates an unmapped error.
	ErrorCodeUnknown ErrorCode = "unknown"
)

// Error is a typed package error for AddressBook operations.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error returns the formatted error message.
func (e *Error) Error() string {
	if e == nil {
		return "contacts: <nil>"
	}
	if e.Message == "" {
		return fmt.Sprintf("contacts: %s", e.Code)
	}
	return fmt.Sprintf("contacts: %s: %s", e.Code, e.Message)
}

// DefaultDir returns the current user's AddressBook directory.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("contacts: unable to resolve home directory: %w", err)
	}
	return filepath.Join(home, addressBookRelativePath), nil
}

// AuthorizationStatus probes read access to the AddressBook directory.
func AuthorizationStatus(dir string) (AuthStatus, error) {
	_, err := os.ReadDir(dir)
	switch {
	case err == nil:
		return AuthStatusAuthorized, nil
	case errors.Is(err, fs.ErrPermission):
		return AuthStatusDenied, nil
	case errors.Is(err, fs.ErrNotExist):
		return AuthStatusRestricted, nil
	default:
		return "", &Error{Code: ErrorCodeUnknown, Message: err.Error()}
	}
}

// Platform implements [permission.Platform] on top of filesystem access
// to the AddressBook. macOS has no prompt for direct database reads, so a
// request re-probes access; the user grants it in System Settings.
type Platform struct {
	dir     string
	openURL func(ctx context.Context, rawURL string) error
}

// NewPlatform returns a Platform for the AddressBook at dir.
func NewPlatform(dir string) *Platform {
	return &Platform{dir: dir, openURL: browser.OpenURL}
}

// Status maps [AuthorizationStatus] to a permission status.
func (p *Platform) Status(ctx context.Context) (permission.Status, error) {
	status, err := AuthorizationStatus(p.dir)
	if err != nil {
		return permission.StatusNotDetermined, err
	}
	return permissionStatus(status), nil
}

// Request re-probes access. A denial can be retried after the user
// changes System Settings; a missing AddressBook cannot.
func (p *Platform) Request(ctx context.Context) (permission.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return permission.Outcome{}, err
	}
	status, err := AuthorizationStatus(p.dir)
	if err != nil {
		return permission.Outcome{}, err
	}
	return permission.Outcome{
		Granted:     status == AuthStatusAuthorized,
		CanAskAgain: status == AuthStatusDenied,
	}, nil
}

// OpenSettings opens the privacy pane in System Settings.
func (p *Platform) OpenSettings(ctx context.Context) error {
	return p.openURL(ctx, SettingsURL)
}

func permissionStatus(status AuthStatus) permission.Status {
	switch status {
	case AuthStatusAuthorized:
		return permission.StatusGranted
	case AuthStatusDenied:
		return permission.StatusDeniedCanAskAgain
	case AuthStatusRestricted:
		return permission.StatusDeniedPermanently
	default:
		return permission.StatusNotDetermined
	}
}
