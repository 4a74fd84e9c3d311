package services

// PERMISSION_CALENDAR_EVENT_ADD allows adding, changing and removing opening hours.
const PERMISSION_CALENDAR_EVENT_ADD = "calendar.event.add"

// PermissionChecker answers whether the current caller holds a capability.
type PermissionChecker interface {
	HasPermission(name string) bool
}

// StaticPermissions grants a fixed set of capabilities.
type StaticPermissions map[string]struct{}

func NewStaticPermissions(names ...string) StaticPermissions {
	p := StaticPermissions{}
	for _, n := range names {
		p[n] = struct{}{}
	}
	return p
}

func (p StaticPermissions) HasPermission(name string) bool {
	_, ok := p[name]
	return ok
}
