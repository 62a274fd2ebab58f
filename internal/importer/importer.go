package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
)

// Kind names the legacy table an export came from.
type Kind string

const (
	KindInventory Kind = "inventory"
	KindFinance   Kind = "finance"
)

// ParseKind accepts the English names and the original table names.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inventory", "inventario":
		return KindInventory, nil
	case "finance", "finanzas", "ledger":
		return KindFinance, nil
	}

	return "", fmt.Errorf("unknown import kind: %s", s)
}

type Catalog interface {
	Upsert(ctx context.Context, params catalog.UpsertParams) (*catalog.UpsertResult, error)
}

type Ledger interface {
	Create(ctx context.Context, params ledger.CreateParams) (*ledger.Entry, error)
}
