package license

// Subscription tiers. FREE is capped at a monthly number of FINAL reports;
// PRO is unlimited.
const (
	TierFree = "FREE"
	TierPro  = "PRO"
)

// app_config keys.
const (
	KeyTier        = "tier"
	KeyLicenseKey  = "license_key"
	KeyInstallDate = "install_date"
)

// Status is the payload served on the license-status endpoint.
type Status struct {
	Tier         string `json:"tier"`
	MonthlyUsage int    `json:"monthlyUsage"`
	Limit        int    `json:"limit"`
	IsPro        bool   `json:"isPro"`
}
