package billing

import (
	"fmt"
	"strings"
)

// DefaultEmailDomain is the suffix of derived case manager addresses.
const DefaultEmailDomain = "gov.au"

// EmailDraft is a prefilled message to a claim's case manager.
type EmailDraft struct {
	To         string `json:"to"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	Attachment string `json:"attachment,omitempty"`
}

// CaseManagerEmail derives the case manager's address from their name and
// the insurer: "Jane Roe" at "Allianz Workcover" becomes
// "jane.roe@workcover.allianz.gov.au". Only the first space of each is
// replaced.
func CaseManagerEmail(caseManager, insurer, domain string) string {
	if domain == "" {
		domain = DefaultEmailDomain
	}
	name := strings.Replace(strings.ToLower(caseManager), " ", ".", 1)
	provider := strings.ToLower(insurer)
	provider = strings.Replace(provider, " ", "", 1)
	provider = strings.Replace(provider, "workcover", "", 1)
	return fmt.Sprintf("%s@workcover.%s.%s", name, provider, domain)
}

// NewEmailDraft builds the default case manager email for a claim.
func NewEmailDraft(inv Invoice, domain string) EmailDraft {
	body := fmt.Sprintf(`Dear %s,

This is a follow-up regarding invoice %s for %s, dated %s, amounting to $%s.

Please advise on payment status.

Thank you.`, inv.CaseManager, inv.ID, inv.Patient, inv.CreatedAt.Format("2006-01-02"), inv.Amount.StringFixed(2))

	return EmailDraft{
		To:         CaseManagerEmail(inv.CaseManager, inv.Insurer, domain),
		Subject:    "Outstanding Invoice for " + inv.Patient,
		Body:       body,
		Attachment: AttachmentName(inv.ID),
	}
}

// AttachmentName is the suggested statement file name for an invoice.
func AttachmentName(invoiceID string) string {
	return invoiceID + ".pdf"
}

// Validate checks the draft has a recipient, subject and body.
func (d EmailDraft) Validate() error {
	switch {
	case !strings.Contains(d.To, "@"):
		return fmt.Errorf("recipient %q is not an email address", d.To)
	case strings.TrimSpace(d.Subject) == "":
		return fmt.Errorf("subject is required")
	case strings.TrimSpace(d.Body) == "":
		return fmt.Errorf("body is required")
	}
	return nil
}
