//go:build android

package clipboard

import "fmt"

func newSystemBackend() (backend, error) {
	return nil, fmt.Errorf("%w: native clipboard needs an app context on android", ErrUnavailable)
}
