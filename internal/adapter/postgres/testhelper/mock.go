package testhelper

import (
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"
)

// NewMockPool returns a pgxmock pool that fails the test if any expectation
// is left unmet when the test ends.
func NewMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("testhelper: create pgxmock pool: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("testhelper: unmet sql expectations: %v", err)
		}
		mock.Close()
	})
	return mock
}
