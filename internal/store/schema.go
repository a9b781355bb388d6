package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// tableNames lists the tables owned by the store, in description order.
var tableNames = []string{"rdeck", "rgame", "rpack"}

// Column describes one column as reported by PRAGMA table_info.
type Column struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
	Default    *string
}

// currentShape is the expected shape at CurrentVersion.
var currentShape = map[string][]Column{
	"rdeck": {
		{Name: "id", Type: "TEXT", NotNull: true, PrimaryKey: true},
		{Name: "name", Type: "TEXT", NotNull: true},
		{Name: "deck_string", Type: "TEXT", NotNull: true},
		{Name: "wins", Type: "INTEGER", NotNull: true},
		{Name: "losses", Type: "INTEGER", NotNull: true},
		{Name: "accessMillis", Type: "INTEGER", NotNull: true},
		{Name: "arena", Type: "INTEGER", NotNull: true},
	},
	"rgame": {
		{Name: "id", Type: "INTEGER", NotNull: true, PrimaryKey: true},
		{Name: "deck_id", Type: "TEXT"},
		{Name: "victory", Type: "INTEGER", NotNull: true},
		{Name: "player_class", Type: "TEXT", NotNull: true},
		{Name: "opponent_class", Type: "TEXT", NotNull: true},
		{Name: "coin", Type: "INTEGER", NotNull: true},
		{Name: "rank", Type: "INTEGER"},
		{Name: "game_type", Type: "TEXT", NotNull: true},
		{Name: "format_type", Type: "TEXT", NotNull: true},
		{Name: "hs_replay_url", Type: "TEXT"},
		{Name: "date", Type: "INTEGER"},
		{Name: "deck_name", Type: "TEXT", NotNull: true},
	},
	"rpack": {
		{Name: "id", Type: "INTEGER", NotNull: true, PrimaryKey: true},
		{Name: "timeMillis", Type: "INTEGER", NotNull: true},
		{Name: "cardList", Type: "TEXT", NotNull: true},
		{Name: "dust", Type: "INTEGER", NotNull: true},
	},
}

// tableColumns returns the columns of table in declaration order.
// Returns an empty slice if the table does not exist.
func tableColumns(ctx context.Context, q execQuerier, table string) ([]Column, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := []Column{}
	for rows.Next() {
		var (
			cid        int
			name       string
			columnType string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &columnType, &notNull, &defaultVal, &pk); err != nil {
			return nil, err
		}
		col := Column{
			Name:       name,
			Type:       strings.ToUpper(strings.TrimSpace(columnType)),
			NotNull:    notNull != 0,
			PrimaryKey: pk != 0,
		}
		if defaultVal.Valid {
			v := defaultVal.String
			col.Default = &v
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}

// verifyShape compares the live schema against currentShape.
// Column order is not significant; names, types, nullability and primary
// keys are. Extra columns are reported as mismatches.
func verifyShape(ctx context.Context, q execQuerier) error {
	var problems []string
	for _, table := range tableNames {
		live, err := tableColumns(ctx, q, table)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", table, err)
		}
		if len(live) == 0 {
			problems = append(problems, fmt.Sprintf("table %s is missing", table))
			continue
		}

		byName := make(map[string]Column, len(live))
		for _, c := range live {
			byName[strings.ToLower(c.Name)] = c
		}

		for _, want := range currentShape[table] {
			got, ok := byName[strings.ToLower(want.Name)]
			if !ok {
				problems = append(problems, fmt.Sprintf("%s.%s is missing", table, want.Name))
				continue
			}
			delete(byName, strings.ToLower(want.Name))
			if got.Type != want.Type || got.NotNull != want.NotNull || got.PrimaryKey != want.PrimaryKey {
				problems = append(problems, fmt.Sprintf("%s.%s is %s, want %s",
					table, want.Name, describeColumn(got), describeColumn(want)))
			}
		}
		for _, extra := range live {
			if _, ok := byName[strings.ToLower(extra.Name)]; ok {
				problems = append(problems, fmt.Sprintf("%s.%s is unexpected", table, extra.Name))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrSchemaMismatch, strings.Join(problems, "; "))
	}
	return nil
}

// DescribeSchema returns a stable text listing of the store's tables and
// their columns in declaration order.
func (s *Store) DescribeSchema(ctx context.Context) (string, error) {
	var b strings.Builder
	for _, table := range tableNames {
		cols, err := tableColumns(ctx, s.db, table)
		if err != nil {
			return "", fmt.Errorf("describe %s: %w", table, err)
		}
		fmt.Fprintf(&b, "%s\n", table)
		for _, c := range cols {
			fmt.Fprintf(&b, "  %s %s\n", c.Name, describeColumn(c))
		}
	}
	return b.String(), nil
}

func describeColumn(c Column) string {
	parts := []string{c.Type}
	if c.NotNull {
		parts = append(parts, "NOT NULL")
	}
	if c.PrimaryKey {
		parts = append(parts, "PRIMARY KEY")
	}
	if c.Default != nil {
		parts = append(parts, "DEFAULT "+*c.Default)
	}
	return strings.Join(parts, " ")
}
