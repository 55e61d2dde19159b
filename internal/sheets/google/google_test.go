package google

import (
	"context"
	"strings"
	"testing"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{CredentialsJSON: "{}"})
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet"})
	if err == nil {
		t.Fatal("expected error without credentials")
	}
	if !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{
		SpreadsheetID:   "sheet",
		CredentialsFile: t.TempDir() + "/missing.json",
	})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestClient_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: DefaultSheetName}

	if _, err := c.WriteBalances(context.Background(), nil); err == nil {
		t.Error("expected error from WriteBalances without service")
	}
	if _, err := c.ReadBalances(context.Background()); err == nil {
		t.Error("expected error from ReadBalances without service")
	}
}

func TestEncodeRows(t *testing.T) {
	rows := []ports.BalanceRow{
		{AccountID: 4, Name: "Карта", Type: "card", Currency: core.UAH, Balance: 1250.5, BaseCurrency: core.UAH, BaseBalance: 1250.5},
		{AccountID: 2, Name: "Готівка USD", Type: "cash", Currency: core.USD, Balance: -3, BaseCurrency: core.UAH, BaseBalance: -111.111},
	}

	values := encodeRows(rows)
	if len(values) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(values))
	}
	if values[0][1] != "Account" {
		t.Errorf("unexpected header: %v", values[0])
	}
	if values[1][0] != "4" || values[1][4] != "1250.50" {
		t.Errorf("unexpected first row: %v", values[1])
	}
	if values[2][6] != "-111.11" {
		t.Errorf("expected rounded base balance, got %v", values[2][6])
	}
}
