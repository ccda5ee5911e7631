// Package clipboard reads and watches the desktop clipboard.
//
// New picks the first working backend: the native clipboard through
// golang.design/x/clipboard, then github.com/atotto/clipboard (which shells
// out to xclip, xsel, wl-clipboard, pbpaste or the Windows API), then an
// in-memory buffer. A backend that stops answering within the timeout is
// bypassed in favour of the buffer until a later probe succeeds.
package clipboard
