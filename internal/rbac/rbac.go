package rbac

// Role constants
const (
	RoleArtist  = "artist"
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// Permission constants
const (
	PermCreateCampaign   = "create_campaign"
	PermCancelCampaign   = "cancel_campaign"
	PermApproveCampaign  = "approve_campaign"
	PermCreateSubmission = "create_submission"
	PermReviewSubmission = "review_submission"
	PermRunDistribution  = "run_distribution"
	PermViewEarnings     = "view_earnings"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	RoleArtist: {
		PermCreateCampaign, PermCancelCampaign, PermReviewSubmission, PermViewEarnings,
	},
	RoleCreator: {
		PermCreateSubmission, PermViewEarnings,
	},
	RoleAdmin: {
		PermCreateCampaign, PermCancelCampaign, PermApproveCampaign,
		PermCreateSubmission, PermReviewSubmission, PermRunDistribution, PermViewEarnings,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

func IsValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}
