package loan

import (
	"fmt"
	"sort"
	"time"

	"loan-portal-service/internal/models"
)

// Notification categories. At most one notification exists per
// (record id, category) pair in a generated set.
const (
	NotifyDocuments        = "documents"
	NotifyESGCompliance    = "esg_compliance"
	NotifyAssetDeclaration = "asset_declaration"
	NotifyPaymentDue       = "payment_due"
	NotifyApproved         = "approved"
)

// NotificationItem is a derived, ephemeral alert. The set is regenerated
// from scratch on every reconciliation pass and never persisted; an item
// disappears by not being regenerated.
type NotificationItem struct {
	ID          string `json:"id"`
	RecordID    string `json:"record_id"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Urgent      bool   `json:"urgent"`
	ActionLabel string `json:"action_label"`

	// record recency, drives ordering only
	recordCreatedAt time.Time
}

// NotificationGenerator derives prioritized alerts from reconciled
// records. Stateless; safe for concurrent use.
type NotificationGenerator struct {
	Normalizer Normalizer
}

// Generate produces the full notification set for the given records:
// one non-urgent item per unmet requirement, an urgent payment-due item
// for active loans, and a single approved item for approved applications
// carrying an upstream decision. Items are deduplicated per
// (record id, category) and ordered urgent-first, then by record recency.
// Truncation for display is the caller's decision.
func (g NotificationGenerator) Generate(records []models.LoanApplicationRecord) []NotificationItem {
	seen := make(map[string]struct{})
	items := make([]NotificationItem, 0, len(records))

	add := func(item NotificationItem) {
		key := item.RecordID + ":" + item.Category
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		item.ID = key
		items = append(items, item)
	}

	for _, rec := range records {
		if rec.ID == "" {
			continue
		}

		info, err := g.Normalizer.Normalize(rec.Status)
		if err != nil {
			// strict mode: one unmapped record never stops the others
			continue
		}

		reqs := EvaluateRequirements(rec)
		if !reqs.Documents {
			add(NotificationItem{
				RecordID:        rec.ID,
				Category:        NotifyDocuments,
				Title:           "Documents required",
				Description:     fmt.Sprintf("Your %s application is missing required documents.", rec.LoanPurpose),
				ActionLabel:     "Upload documents",
				recordCreatedAt: rec.CreatedAt,
			})
		}
		if !reqs.ESGCompliance {
			add(NotificationItem{
				RecordID:        rec.ID,
				Category:        NotifyESGCompliance,
				Title:           "ESG compliance form pending",
				Description:     "Complete the ESG compliance form to keep your application moving.",
				ActionLabel:     "Complete ESG form",
				recordCreatedAt: rec.CreatedAt,
			})
		}
		if !reqs.AssetDeclaration {
			add(NotificationItem{
				RecordID:        rec.ID,
				Category:        NotifyAssetDeclaration,
				Title:           "Asset declaration pending",
				Description:     "Declare your assets to complete the onboarding requirements.",
				ActionLabel:     "Declare assets",
				recordCreatedAt: rec.CreatedAt,
			})
		}

		if info.Canonical == StatusActive {
			add(NotificationItem{
				RecordID:        rec.ID,
				Category:        NotifyPaymentDue,
				Title:           "Payment due",
				Description:     fmt.Sprintf("An installment on your %s loan is due.", rec.LoanPurpose),
				Urgent:          true,
				ActionLabel:     "Pay installment",
				recordCreatedAt: rec.CreatedAt,
			})
		}

		if info.Canonical == StatusApproved && rec.AIDecision != "" {
			add(NotificationItem{
				RecordID:        rec.ID,
				Category:        NotifyApproved,
				Title:           "Application approved",
				Description:     fmt.Sprintf("Your %s application has been approved.", rec.LoanPurpose),
				ActionLabel:     "View offer",
				recordCreatedAt: rec.CreatedAt,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Urgent != items[j].Urgent {
			return items[i].Urgent
		}
		if !items[i].recordCreatedAt.Equal(items[j].recordCreatedAt) {
			return items[i].recordCreatedAt.After(items[j].recordCreatedAt)
		}
		return items[i].RecordID < items[j].RecordID
	})

	return items
}
