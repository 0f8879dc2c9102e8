package messages

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"

	"github.com/spachava753/contactsapp/browser"
)

// Swapped in tests.
var (
	openURL   = browser.OpenURL
	runScript = runAppleScript
)

// Call starts a phone call to number with the system's tel: handler
// (FaceTime or iPhone continuity on macOS).
func Call(ctx context.Context, number string) error {
	target, err := dialTarget(number)
	if err != nil {
		return err
	}
	if err := openURL(ctx, (&url.URL{Scheme: "tel", Opaque: target}).String()); err != nil {
		return fmt.Errorf("messages: call %q failed: %w", target, err)
	}
	return nil
}

// Compose opens a new message to number in the system's sms: handler
// without sending anything.
func Compose(ctx context.Context, number string) error {
	target, err := dialTarget(number)
	if err != nil {
		return err
	}
	if err := openURL(ctx, (&url.URL{Scheme: "sms", Opaque: target}).String()); err != nil {
		return fmt.Errorf("messages: compose to %q failed: %w", target, err)
	}
	return nil
}

// Send sends body to number through Messages.app, trying iMessage, then
// SMS, then RCS.
func Send(ctx context.Context, number string, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return errors.New("messages: body is required")
	}
	handle := normalizeHandleForSend(number)
	if !looksLikeHandle(handle) {
		return fmt.Errorf("messages: %q is not a phone number or handle", number)
	}
	return sendMessageToHandle(ctx, handle, body)
}

func dialTarget(number string) (string, error) {
	handle := normalizeHandleForSend(number)
	if handle == "" {
		return "", errors.New("messages: phone number is required")
	}
	if !looksLikeHandle(handle) || strings.Contains(handle, "@") {
		return "", fmt.Errorf("messages: %q is not a phone number", number)
	}
	return normalizeDialString(handle), nil
}

// sendServices is the order Send tries Messages accounts in.
var sendServices = []string{"iMessage", "SMS", "RCS"}

func sendMessageToHandle(ctx context.Context, handle string, body string) error {
	var lastErr error
	for _, service := range sendServices {
		script := []string{
			`on run argv`,
			`set targetHandle to item 1 of argv`,
			`set bodyText to item 2 of argv`,
			`set desiredService to item 3 of argv`,
			`tell application "Messages"`,
			`set targetAccount to first account whose service type is desiredService`,
			`set targetParticipant to participant targetHandle of targetAccount`,
			`send bodyText to targetParticipant`,
			`end tell`,
			`end run`,
		}
		_, err := runScript(ctx, script, []string{handle, body, service})
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err
	}

	return fmt.Errorf("messages: send to handle %q failed: %w", handle, lastErr)
}

func runAppleScript(ctx context.Context, lines []string, args []string) (string, error) {
	cmdArgs := make([]string, 0, len(lines)*2+len(args))
	for _, line := range lines {
		cmdArgs = append(cmdArgs, "-e", line)
	}
	cmdArgs = append(cmdArgs, args...)

	cmd := exec.CommandContext(ctx, "/usr/bin/osascript", cmdArgs...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(out.String()))
	}
	return strings.TrimSpace(out.String()), nil
}

// normalizeDialString keeps digits, a leading plus, and the DTMF
// characters * and #.
func normalizeDialString(value string) string {
	var b strings.Builder
	for i, r := range value {
		switch {
		case r >= '0' && r <= '9', r == '*', r == '#':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeHandleForSend(handle string) string {
	handle = strings.TrimSpace(handle)
	if i := strings.Index(handle, "("); i > 0 && strings.HasSuffix(handle, ")") {
		handle = strings.TrimSpace(handle[:i])
	}
	return handle
}

func looksLikeHandle(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	if strings.Contains(value, "@") {
		return true
	}
	for _, r := range value {
		if (r >= '0' && r <= '9') || r == '+' {
			return true
		}
	}
	return false
}
