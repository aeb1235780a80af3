package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"exam:list",
		"exam:view",
		"submission:create",
		"submission:save",
		"submission:submit",
		"submission:view-own",
	},
	"grader": {
		"exam:list",
		"exam:view",
		"submission:view-all",
		"submission:grade",
	},
	"author": {
		"exam:create",
		"exam:list",
		"exam:view",
		"submission:view-all",
		"submission:grade",
	},
	"admin": {
		"*", // everything
	},
}
