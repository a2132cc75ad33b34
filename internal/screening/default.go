package screening

import "github.com/ledgerguard/ledgerguard/internal/model"

// DefaultDataset contains the built-in screening entries used when no
// dataset file is configured. Addresses here are seed fixtures for
// local runs, not a production sanctions feed.
var DefaultDataset = []DatasetEntry{
	{
		Address:    "0x7f367cc41522ce07553e823bf3be79a889debe1b",
		Category:   model.CategorySanctions,
		Severity:   string(model.SeveritySevere),
		RiskScore:  95,
		EntityName: "Lazarus Group (fixture)",
		EntityType: "organization",
		Actions:    []string{model.ActionReject, model.ActionFileReport},
	},
	{
		Address:    "0x722122df12d4e14e13ac3b6895a86e84145b6967",
		Category:   model.CategoryMixer,
		Severity:   string(model.SeverityHigh),
		RiskScore:  80,
		EntityName: "Tornado Cash router (fixture)",
		EntityType: "contract",
		Actions:    []string{model.ActionManualReview},
	},
	{
		Address:    "0x098b716b8aaf21512996dc57eb0615e2383e2f96",
		Category:   model.CategoryScam,
		Severity:   string(model.SeverityHigh),
		RiskScore:  75,
		EntityName: "Ronin bridge exploiter (fixture)",
		EntityType: "wallet",
		Actions:    []string{model.ActionReject, model.ActionManualReview},
	},
	{
		Address:    "bc1qw4h8u6tdxt9q8p0kt8nvvt4yyw3r5wyw5ff999",
		Category:   model.CategoryDarknet,
		Severity:   string(model.SeverityMedium),
		RiskScore:  60,
		EntityName: "darknet market wallet (fixture)",
		EntityType: "wallet",
		Chains:     []string{"bitcoin"},
		Actions:    []string{model.ActionManualReview},
	},
}
