package pgxutil

import (
	"database/sql"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestTxOptions(t *testing.T) {
	tests := []struct {
		name string
		in   *sql.TxOptions
		want pgx.TxOptions
	}{
		{name: "nil", in: nil, want: pgx.TxOptions{}},
		{name: "zero", in: &sql.TxOptions{}, want: pgx.TxOptions{AccessMode: pgx.ReadWrite}},
		{
			name: "read only snapshot",
			in:   &sql.TxOptions{Isolation: sql.LevelSnapshot, ReadOnly: true},
			want: pgx.TxOptions{AccessMode: pgx.ReadOnly, IsoLevel: pgx.RepeatableRead},
		},
		{
			name: "linearizable",
			in:   &sql.TxOptions{Isolation: sql.LevelLinearizable},
			want: pgx.TxOptions{AccessMode: pgx.ReadWrite, IsoLevel: pgx.Serializable},
		},
		{
			name: "read uncommitted",
			in:   &sql.TxOptions{Isolation: sql.LevelReadUncommitted},
			want: pgx.TxOptions{AccessMode: pgx.ReadWrite, IsoLevel: pgx.ReadUncommitted},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TxOptions(tt.in))
		})
	}
}

func TestReadOnlyTx(t *testing.T) {
	assert.Equal(t, TxOptions(&sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}), ReadOnlyTx)
}
