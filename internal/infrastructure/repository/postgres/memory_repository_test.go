package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
)

func TestMemoryLoadUnknownUserReturnsZeroProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewMemoryRepository(db)
	mock.ExpectQuery("FROM memory_profiles").
		WithArgs("unknown").
		WillReturnRows(sqlmock.NewRows([]string{"master_summary", "user_facts"}))

	profile, err := repo.Load(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !profile.IsEmpty() {
		t.Fatalf("expected zero profile, got %+v", profile)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMemoryLoadParsesFacts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewMemoryRepository(db)
	rows := sqlmock.NewRows([]string{"master_summary", "user_facts"}).
		AddRow("a summary", []byte(`{"name": "Dana"}`))
	mock.ExpectQuery("FROM memory_profiles").
		WithArgs("u-1").
		WillReturnRows(rows)

	profile, err := repo.Load(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if profile.MasterSummary != "a summary" || profile.UserFacts["name"] != "Dana" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMemorySaveUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewMemoryRepository(db)
	mock.ExpectExec("INSERT INTO memory_profiles").
		WithArgs("u-1", "new summary", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Save(context.Background(), "u-1", domain.MemoryProfile{
		MasterSummary: "new summary",
		UserFacts:     map[string]string{"stack": "Go"},
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
