package hastauth

import "context"

type deviceContextKey struct{}

// WithDevice attaches a device label (model, installation id) to ctx. The
// client copies it into the metadata of every audit event emitted for the
// call. It is never sent to the backend.
func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, deviceContextKey{}, device)
}

func deviceFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	device, _ := ctx.Value(deviceContextKey{}).(string)
	return device
}
