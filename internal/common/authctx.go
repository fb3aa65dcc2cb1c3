package common

import "context"

type ctxKey string

const deviceRoleKey ctxKey = "auth/device-role"

// WithDeviceRole stores the authenticated device role on the provided context.
func WithDeviceRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, deviceRoleKey, role)
}

// DeviceRole extracts the authenticated device role from the context if present.
func DeviceRole(ctx context.Context) (string, bool) {
	v := ctx.Value(deviceRoleKey)
	if v == nil {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}
