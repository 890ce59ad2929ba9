package rbac

const (
	RoleCandidate = "candidate"
	RoleExpert    = "expert"
	RoleAdmin     = "admin"
)

const (
	PermCriteriaView     = "criteria:view"
	PermEvaluationOwn    = "evaluation:own"
	PermEvaluationExport = "evaluation:export"
	PermProfileOwn       = "profile:own"
	PermUsersList        = "users:list"
	PermUsersCreate      = "users:create"
	PermEventsView       = "events:view"
	PermRubricsManage    = "rubrics:manage"
)

// RolePermissions is the default policy. Experts can read the user list and
// the event log to follow candidates; only admins create accounts.
var RolePermissions = map[string][]string{
	RoleCandidate: {
		PermCriteriaView,
		"evaluation:*",
		PermProfileOwn,
	},
	RoleExpert: {
		PermCriteriaView,
		"evaluation:*",
		PermProfileOwn,
		PermUsersList,
		PermEventsView,
	},
	RoleAdmin: {
		"*",
	},
}

// ValidRole reports whether role is known to the default policy.
func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}
