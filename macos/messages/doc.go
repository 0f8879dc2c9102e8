// Package messages implements the call and message shortcuts of the
// contact list on macOS.
//
// Call and Compose hand tel: and sms: URLs to the system handler and return
// immediately. Send delivers a text through Messages.app with AppleScript,
// trying iMessage, SMS, then RCS accounts in order.
//
// Operational notes
//
//   - Send requires macOS Automation permission for the calling process to
//     control Messages.app (System Settings -> Privacy & Security -> Automation).
//   - Phone numbers are passed through as typed by the user; Call and Compose
//     strip formatting characters before building the URL.
package messages
