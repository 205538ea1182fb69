package db

import (
	"context"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var progressUpsert = UpsertConfig{
	Table:        "run_progress",
	Columns:      []string{"run_id", "source_id", "status"},
	ConflictKeys: []string{"run_id", "source_id"},
}

func TestUpsertSQL(t *testing.T) {
	tests := []struct {
		name string
		cfg  UpsertConfig
		want string
	}{
		{
			name: "update_non_key_columns",
			cfg:  progressUpsert,
			want: `INSERT INTO "run_progress" ("run_id", "source_id", "status") VALUES ($1, $2, $3) ON CONFLICT ("run_id", "source_id") DO UPDATE SET "status" = EXCLUDED."status"`,
		},
		{
			name: "explicit_update_columns",
			cfg: UpsertConfig{
				Table:        "research.runs",
				Columns:      []string{"id", "status", "created_at"},
				ConflictKeys: []string{"id"},
				UpdateCols:   []string{"status"},
			},
			want: `INSERT INTO "research"."runs" ("id", "status", "created_at") VALUES ($1, $2, $3) ON CONFLICT ("id") DO UPDATE SET "status" = EXCLUDED."status"`,
		},
		{
			name: "keys_only",
			cfg: UpsertConfig{
				Table:        "seen",
				Columns:      []string{"id"},
				ConflictKeys: []string{"id"},
			},
			want: `INSERT INTO "seen" ("id") VALUES ($1) ON CONFLICT ("id") DO NOTHING`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UpsertSQL(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpsertSQL_NoColumns(t *testing.T) {
	_, err := UpsertSQL(UpsertConfig{Table: "t", ConflictKeys: []string{"id"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestUpsertSQL_NoConflictKeys(t *testing.T) {
	_, err := UpsertSQL(UpsertConfig{Table: "t", Columns: []string{"id", "name"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestUpsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	sql, err := UpsertSQL(progressUpsert)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(sql)).
		WithArgs("run-1", "openai", "completed").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n, err := Upsert(context.Background(), mock, progressUpsert, "run-1", "openai", "completed")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_ValueCountMismatch(t *testing.T) {
	_, err := Upsert(context.Background(), nil, progressUpsert, "run-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 values for 3 columns")
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", `"simple"`},
		{"research.runs", `"research"."runs"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeTable(tt.input))
		})
	}
}

func TestQuoteAndJoin(t *testing.T) {
	assert.Equal(t, `"id", "name", "value"`, quoteAndJoin([]string{"id", "name", "value"}))
}
