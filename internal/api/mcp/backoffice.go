package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cofinco/backoffice/internal/api/handlers"
	"github.com/cofinco/backoffice/internal/domain/document"
	"github.com/cofinco/backoffice/internal/domain/errors"
	"github.com/cofinco/backoffice/internal/domain/ledger"
)

func decodeArgs(arguments json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(arguments, v); err != nil {
		return errors.NewValidationError("invalid arguments").WithDetail("cause", err.Error())
	}
	return nil
}

// RegisterBackoffice exposes the ledger, accounts and audit log
func RegisterBackoffice(s *Server, svc handlers.Services) {
	opTypes := make([]string, 0, len(ledger.KnownTypes()))
	for _, t := range ledger.KnownTypes() {
		opTypes = append(opTypes, string(t))
	}

	s.AddTool(Tool{
		Name:        "record_operation",
		Description: "Records a counter or field operation and posts its double-entry journal rows",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"agence":  map[string]string{"type": "string", "description": "Agency identifier"},
				"type":    map[string]interface{}{"type": "string", "description": "Operation type", "enum": opTypes},
				"produit": map[string]string{"type": "string", "description": "Product name"},
				"montant": map[string]string{"type": "string", "description": "Positive amount as a decimal string"},
				"acteur":  map[string]string{"type": "string", "description": "Operator username"},
				"client":  map[string]string{"type": "string", "description": "Client phone number"},
			},
			Required: []string{"agence", "type", "produit", "montant", "acteur", "client"},
		},
		Run: func(ctx context.Context, arguments json.RawMessage) (interface{}, error) {
			var req ledger.RecordRequest
			if err := decodeArgs(arguments, &req); err != nil {
				return nil, err
			}
			return svc.Ledger.Record(ctx, req)
		},
	})

	s.AddTool(Tool{
		Name:        "list_accounts",
		Description: "Lists account-opening requests, optionally filtered by status",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"status": map[string]interface{}{"type": "string", "enum": []string{"PENDING", "ACTIVE"}},
			},
		},
		Run: func(ctx context.Context, arguments json.RawMessage) (interface{}, error) {
			var args struct {
				Status string `json:"status"`
			}
			if err := decodeArgs(arguments, &args); err != nil {
				return nil, err
			}
			return svc.Accounts.List(ctx, document.AccountStatus(strings.ToUpper(args.Status)))
		},
	})

	s.AddResource(Resource{
		URI:         "backoffice://accounting/journal",
		Name:        "Journal",
		Description: "All journal rows in posting order",
		Read:        func(ctx context.Context) (interface{}, error) { return svc.Ledger.Journal(ctx) },
	})
	s.AddResource(Resource{
		URI:         "backoffice://accounting/balance",
		Name:        "Trial balance",
		Description: "Debit, credit and balance per ledger account",
		Read: func(ctx context.Context) (interface{}, error) {
			tb, err := svc.Ledger.TrialBalance(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"rows": tb, "total": tb.Total(), "closes": tb.Closes()}, nil
		},
	})
	s.AddResource(Resource{
		URI:         "backoffice://audit",
		Name:        "Audit log",
		Description: "State-changing actions, newest first",
		Read:        func(ctx context.Context) (interface{}, error) { return svc.Audit.List(ctx) },
	})
}
