package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nalgeon/be"
	osbrowser "github.com/pkg/browser"
)

func stubLaunch(t *testing.T, fn func(string) error) {
	t.Helper()
	prev := launch
	launch = fn
	t.Cleanup(func() { launch = prev })
}

func TestParseURL(t *testing.T) {
	u, err := parseURL(" tel:+15551234567 ")
	be.Err(t, err, nil)
	be.Equal(t, u.Scheme, "tel")
	be.Equal(t, u.Opaque, "+15551234567")

	_, err = parseURL("")
	be.Err(t, err, "url is required")

	_, err = parseURL("example.com/path")
	be.Err(t, err, "has no scheme")
}

func TestOpenURLRejectsBadInput(t *testing.T) {
	called := false
	stubLaunch(t, func(string) error {
		called = true
		return nil
	})

	be.Err(t, OpenURL(context.Background(), ""), "url is required")
	be.True(t, !called)
}

func TestOpenURLPassesNormalizedURL(t *testing.T) {
	var got string
	stubLaunch(t, func(u string) error {
		got = u
		return nil
	})

	be.Err(t, OpenURL(context.Background(), "  sms:+15551234567 "), nil)
	be.Equal(t, got, "sms:+15551234567")
}

func TestOpenURLCanceledContext(t *testing.T) {
	called := false
	stubLaunch(t, func(string) error {
		called = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	be.Err(t, OpenURL(ctx, "tel:555"), context.Canceled)
	be.True(t, !called)
}

func TestOpenURLCapturesOpenerOutput(t *testing.T) {
	prevStdout, prevStderr := osbrowser.Stdout, osbrowser.Stderr
	stubLaunch(t, func(string) error {
		fmt.Fprintln(osbrowser.Stderr, "no handler for scheme")
		return errors.New("exit status 1")
	})

	err := OpenURL(context.Background(), "x-apple.systempreferences:com.apple.preference.security")
	be.Err(t, err, "no handler for scheme")
	be.Err(t, err, "exit status 1")
	be.True(t, osbrowser.Stdout == prevStdout)
	be.True(t, osbrowser.Stderr == prevStderr)
}
