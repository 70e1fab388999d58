package db

import (
	"context"
	"testing"
)

func TestTxFromContext_Nil(t *testing.T) {
	tx := TxFromContext(context.Background())
	if tx != nil {
		t.Error("expected nil tx from empty context")
	}
}

func TestTxFromContext_WithWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), DBTxKey, "not-a-tx")
	tx := TxFromContext(ctx)
	if tx != nil {
		t.Error("expected nil tx when context value has wrong type")
	}
}

func TestResolve_FallsBackToDefault(t *testing.T) {
	var def Querier
	if got := Resolve(context.Background(), def); got != def {
		t.Errorf("expected default querier, got %v", got)
	}
}
