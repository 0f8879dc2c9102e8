// Package browser hands URLs to the host operating system.
//
// It is used for settings deep links and for the tel: and sms: intents
// behind the call and message shortcuts. The per-OS opener comes from
// github.com/pkg/browser.
package browser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	osbrowser "github.com/pkg/browser"
)

// Swapped in tests.
var launch = osbrowser.OpenURL

// osbrowser writes the opener's output to package-level writers, so calls
// are serialized while those are redirected.
var launchMu sync.Mutex

// OpenURL asks the OS to open rawURL with its registered handler. It
// returns once the handler has been launched. ctx is checked before the
// opener starts; the opener itself cannot be interrupted.
func OpenURL(ctx context.Context, rawURL string) error {
	u, err := parseURL(rawURL)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	launchMu.Lock()
	defer launchMu.Unlock()

	var out bytes.Buffer
	prevStdout, prevStderr := osbrowser.Stdout, osbrowser.Stderr
	osbrowser.Stdout, osbrowser.Stderr = &out, &out
	defer func() {
		osbrowser.Stdout, osbrowser.Stderr = prevStdout, prevStderr
	}()

	if err := launch(u.String()); err != nil {
		if detail := strings.TrimSpace(out.String()); detail != "" {
			return fmt.Errorf("browser: opening %q failed: %w: %s", u.Scheme+":", err, detail)
		}
		return fmt.Errorf("browser: opening %q failed: %w", u.Scheme+":", err)
	}
	return nil
}

func parseURL(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errors.New("browser: url is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("browser: invalid url: %w", err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("browser: url %q has no scheme", rawURL)
	}
	return u, nil
}
