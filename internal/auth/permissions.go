package auth

const (
	RoleAdmin       = "admin"
	RolePayroll     = "payroll"
	RoleOperator    = "operator"
	RoleViewer      = "viewer"
	RoleIntegration = "integration"
)

const (
	PermAttendanceRead   = "attendance.read"
	PermAttendanceImport = "attendance.import"
	PermAttendanceWrite  = "attendance.write"
	PermScheduleRepair   = "schedule.normalize"
	PermPayrollSync      = "payroll.sync"
	PermAuditRead        = "audit.read"
	PermReportsRead      = "reports.read"
)

var DefaultPermissions = []string{
	PermAttendanceRead,
	PermAttendanceImport,
	PermAttendanceWrite,
	PermScheduleRepair,
	PermPayrollSync,
	PermAuditRead,
	PermReportsRead,
}

var RolePermissions = map[string][]string{
	RoleAdmin: DefaultPermissions,
	RolePayroll: {
		PermAttendanceRead,
		PermPayrollSync,
		PermAuditRead,
		PermReportsRead,
	},
	RoleOperator: {
		PermAttendanceRead,
		PermAttendanceImport,
		PermAttendanceWrite,
		PermScheduleRepair,
		PermReportsRead,
	},
	RoleViewer: {
		PermAttendanceRead,
	},
	// Callers authenticated with the trigger key, such as the clock
	// collector or a cron host.
	RoleIntegration: {
		PermAttendanceImport,
		PermPayrollSync,
	},
}

func HasPermission(role, permission string) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}
