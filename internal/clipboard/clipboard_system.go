//go:build !android

package clipboard

import (
	"context"
	"fmt"

	xclip "golang.design/x/clipboard"
)

// systemBackend uses the native clipboard through golang.design.
type systemBackend struct{}

func newSystemBackend() (backend, error) {
	if err := xclip.Init(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return systemBackend{}, nil
}

func (systemBackend) read() ([]byte, error) {
	return xclip.Read(xclip.FmtText), nil
}

func (systemBackend) write(data []byte) error {
	xclip.Write(xclip.FmtText, data)
	return nil
}

func (systemBackend) name() string { return "system" }

// watch streams clipboard changes without polling.
func (systemBackend) watch(ctx context.Context) <-chan []byte {
	return xclip.Watch(ctx, xclip.FmtText)
}
