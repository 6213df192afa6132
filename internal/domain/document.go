package domain

// DocumentType classifies a generated structured document.
type DocumentType string

const (
	DocInvoice       DocumentType = "INVOICE"
	DocPrescription  DocumentType = "PRESCRIPTION"
	DocAdmissionForm DocumentType = "ADMISSION_FORM"
	DocMemo          DocumentType = "MEMO"
)

// DocumentTypes returns the closed set of document types, in declaration order.
func DocumentTypes() []DocumentType {
	return []DocumentType{DocInvoice, DocPrescription, DocAdmissionForm, DocMemo}
}

// ParseDocumentType validates a raw value against the closed document-type set.
func ParseDocumentType(raw string) (DocumentType, error) {
	for _, dt := range DocumentTypes() {
		if string(dt) == raw {
			return dt, nil
		}
	}
	return "", NewDomainError("ParseDocumentType", ErrInvalidInput, raw)
}

// Document is a structured document synthesized by a specialist through the
// document tool. Immutable once constructed; owned by the chat message that
// carries it.
type Document struct {
	Type             DocumentType      `json:"type"`
	Title            string            `json:"title"`
	Fields           map[string]string `json:"fields"`
	ComplianceFooter string            `json:"compliance_footer"`
}
