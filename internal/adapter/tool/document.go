package tool

import (
	"encoding/json"
	"fmt"

	"mediops/internal/domain"
)

// DocumentToolName is the function name specialists use to synthesize a
// structured document. The schema below is a stable contract with the
// generation backend.
const DocumentToolName = "create_document"

// documentParamsSchema is the JSON Schema for create_document arguments.
// All four fields are required.
var documentParamsSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"docType": {
			"type": "string",
			"enum": ["INVOICE", "PRESCRIPTION", "ADMISSION_FORM", "MEMO"],
			"description": "The kind of document to generate."
		},
		"title": {
			"type": "string",
			"description": "Document title."
		},
		"fields": {
			"type": "object",
			"description": "Document body as field-name to value pairs."
		},
		"complianceNote": {
			"type": "string",
			"description": "Compliance footer text for the document."
		}
	},
	"required": ["docType", "title", "fields", "complianceNote"]
}`)

// DocumentTool returns the create_document tool declaration.
func DocumentTool() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        DocumentToolName,
		Description: "Generate a structured hospital document (invoice, prescription, admission form, or memo).",
		Parameters:  documentParamsSchema,
	}
}

// documentArgs mirrors the wire shape of create_document arguments.
type documentArgs struct {
	DocType        string         `json:"docType"`
	Title          string         `json:"title"`
	Fields         map[string]any `json:"fields"`
	ComplianceNote string         `json:"complianceNote"`
}

// ParseDocumentArgs decodes create_document arguments into a Document.
// Field values must be scalars; nested structures are rejected.
func ParseDocumentArgs(raw json.RawMessage) (*domain.Document, error) {
	var args documentArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, domain.NewDomainError("ParseDocumentArgs", domain.ErrDecodeFailed, err.Error())
	}

	docType, err := domain.ParseDocumentType(args.DocType)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(args.Fields))
	for name, value := range args.Fields {
		switch v := value.(type) {
		case string:
			fields[name] = v
		case float64, bool, json.Number:
			fields[name] = fmt.Sprint(v)
		case nil:
			fields[name] = ""
		default:
			return nil, domain.NewDomainError("ParseDocumentArgs", domain.ErrInvalidInput,
				fmt.Sprintf("field %q is not a scalar", name))
		}
	}

	return &domain.Document{
		Type:             docType,
		Title:            args.Title,
		Fields:           fields,
		ComplianceFooter: args.ComplianceNote,
	}, nil
}
