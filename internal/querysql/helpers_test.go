package querysql

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/testutil"
)

// newB starts a query on model_b projecting only id_b.
func newB(t *testing.T, m testutil.Models, opts ...Option) QuerySet {
	t.Helper()
	qs, err := New(m.B, opts...)
	require.NoError(t, err)
	qs, err = qs.Values("id_b")
	require.NoError(t, err)
	return qs
}

func mustSQL(t *testing.T, qs QuerySet) string {
	t.Helper()
	stmt, err := qs.Query()
	require.NoError(t, err)
	return stmt.SQL
}
