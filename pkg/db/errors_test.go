package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error should not be a violation")
	}

	pgErr := errors.New(`duplicate key value violates unique constraint "idx_join_requests_org_user"`)
	if !IsUniqueViolation(pgErr, "") {
		t.Fatal("expected postgres duplicate key to match")
	}
	if !IsUniqueViolation(pgErr, "idx_join_requests_org_user") {
		t.Fatal("expected constraint name to match")
	}
	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatal("unrelated error should not match")
	}

	sqliteErr := errors.New("UNIQUE constraint failed: join_requests.org_id, join_requests.user_id")
	if !IsUniqueViolation(sqliteErr, "") {
		t.Fatal("expected sqlite unique violation to match")
	}
}
