package model

// Permission is an atomic capability, optionally grouped under a
// module. Menu nodes and protected endpoints are gated by
// permission identity.
type Permission struct {
	ID       uint64  // permissions.id
	Name     string  // permissions.name
	ModuleID *uint64 // permissions.module_id (nullable)
	Module   *Module // joined from modules, nil when ungrouped
	IsActive bool    // permissions.is_active
}

// Module is a grouping label for permissions (e.g. "Payroll",
// "Attendance"). It exists purely for display purposes.
type Module struct {
	ID   uint64 // modules.id
	Name string // modules.name
}
