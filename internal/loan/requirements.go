package loan

import "loan-portal-service/internal/models"

// Human labels for the onboarding requirements. The order Documents,
// ESG Compliance, Asset Declaration is a presentation contract and
// must stay stable.
const (
	LabelDocuments        = "Documents"
	LabelESGCompliance    = "ESG Compliance"
	LabelAssetDeclaration = "Asset Declaration"
)

// RequirementStatus captures which onboarding steps an application has
// completed. The three flags are independent; there is no ordering
// constraint between them.
type RequirementStatus struct {
	Documents        bool     `json:"documents"`
	ESGCompliance    bool     `json:"esg_compliance"`
	AssetDeclaration bool     `json:"asset_declaration"`
	PendingList      []string `json:"pending_list"`
	AllComplete      bool     `json:"all_complete"`
}

// EvaluateRequirements derives the requirement flags for a record. A flag
// absent from the source payload decoded to false upstream, so it shows
// up here as an unmet requirement. Never mutates the record.
func EvaluateRequirements(record models.LoanApplicationRecord) RequirementStatus {
	rs := RequirementStatus{
		Documents:        record.DocumentsCompleted,
		ESGCompliance:    record.ESGCompleted,
		AssetDeclaration: record.AssetsCompleted,
	}

	pending := make([]string, 0, 3)
	if !rs.Documents {
		pending = append(pending, LabelDocuments)
	}
	if !rs.ESGCompliance {
		pending = append(pending, LabelESGCompliance)
	}
	if !rs.AssetDeclaration {
		pending = append(pending, LabelAssetDeclaration)
	}

	rs.PendingList = pending
	rs.AllComplete = len(pending) == 0
	return rs
}
