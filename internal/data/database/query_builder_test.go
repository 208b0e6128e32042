package database

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuildListQuery_BasicSelect(t *testing.T) {
	query, args := BuildListQuery(NewListQueryOptions("listings"))

	expected := `SELECT * FROM "listings"`
	if query != expected {
		t.Errorf("Expected query %q, got %q", expected, query)
	}
	if len(args) != 0 {
		t.Errorf("Expected 0 args, got %d", len(args))
	}
}

func TestBuildListQuery_WithQualifiedColumns(t *testing.T) {
	opts := NewListQueryOptions("listings",
		WithColumns("listings.id", "title"),
	)
	query, _ := BuildListQuery(opts)

	expected := `SELECT "listings"."id", "title" FROM "listings"`
	if query != expected {
		t.Errorf("Expected query %q, got %q", expected, query)
	}
}

func TestBuildListQuery_CountOnly(t *testing.T) {
	opts := NewListQueryOptions("listings",
		WithCountOnly(),
		WithCondition(WhereCond("active", Equal, true)),
		WithLimit(10),
	)
	query, args := BuildListQuery(opts)

	expected := `SELECT COUNT(*) FROM "listings" WHERE "active" = $1`
	if query != expected {
		t.Errorf("Expected query %q, got %q", expected, query)
	}
	if !reflect.DeepEqual(args, []any{true}) {
		t.Errorf("Expected args [true], got %v", args)
	}
}

func TestBuildListQuery_Comparisons(t *testing.T) {
	opts := NewListQueryOptions("listings",
		WithCondition(WhereCond("price_cents", GreaterThanOrEqual, 100)),
		WithCondition(WhereCond("price_cents", LessThan, 900)),
		WithCondition(WhereCond("status", NotEqual, "archived")),
	)
	query, args := BuildListQuery(opts)

	expected := `SELECT * FROM "listings" WHERE "price_cents" >= $1 AND "price_cents" < $2 AND "status" != $3`
	if query != expected {
		t.Errorf("Expected query %q, got %q", expected, query)
	}
	if !reflect.DeepEqual(args, []any{100, 900, "archived"}) {
		t.Errorf("unexpected args %v", args)
	}
}

func TestBuildListQuery_ContainsEscapesWildcards(t *testing.T) {
	opts := NewListQueryOptions("listings",
		WithCondition(WhereCond("title", ILike, "50%_off")),
	)
	query, args := BuildListQuery(opts)

	if query != `SELECT * FROM "listings" WHERE "title" ILIKE $1` {
		t.Errorf("unexpected query %q", query)
	}
	if !reflect.DeepEqual(args, []any{`%50\%\_off%`}) {
		t.Errorf("unexpected args %v", args)
	}
}

func TestBuildListQuery_WhereIn(t *testing.T) {
	opts := NewListQueryOptions("listings",
		WithCondition(WhereCond("category", In, []any{"shoes", "bags"})),
		WithCondition(WhereCond("id", In, []int{})),
	)
	query, args := BuildListQuery(opts)

	expected := `SELECT * FROM "listings" WHERE "category" IN ($1, $2)`
	if query != expected {
		t.Errorf("Expected query %q, got %q", expected, query)
	}
	if len(args) != 2 {
		t.Errorf("Expected 2 args, got %d", len(args))
	}
}

func TestBuildListQuery_OrderLimitOffset(t *testing.T) {
	opts := NewListQueryOptions("listings",
		WithCondition(WhereCond("active", Equal, true)),
		WithOrderBy("created_at", "desc"),
		WithLimit(20),
		WithOffset(40),
	)
	query, args := BuildListQuery(opts)

	expected := `SELECT * FROM "listings" WHERE "active" = $1 ORDER BY "created_at" DESC LIMIT $2 OFFSET $3`
	if query != expected {
		t.Errorf("Expected query %q, got %q", expected, query)
	}
	if !reflect.DeepEqual(args, []any{true, 20, 40}) {
		t.Errorf("unexpected args %v", args)
	}
}

func TestBuildListQuery_InvalidOrderDirIgnored(t *testing.T) {
	opts := NewListQueryOptions("listings", WithOrderBy("title", "; DROP TABLE listings"))
	query, _ := BuildListQuery(opts)
	if query != `SELECT * FROM "listings" ORDER BY "title"` {
		t.Errorf("unexpected query %q", query)
	}
}

func TestBuildListQuery_SQLInjectionPrevention(t *testing.T) {
	opts := NewListQueryOptions(`listings"; DROP TABLE listings; --`,
		WithCondition(WhereCond(`title" = 'x' OR 1=1 --`, Equal, "x")),
	)
	query, _ := BuildListQuery(opts)

	if !strings.Contains(query, `FROM "listings""; DROP TABLE listings; --"`) {
		t.Errorf("table name was not quoted: %q", query)
	}
	if !strings.Contains(query, `WHERE "title"" = 'x' OR 1=1 --" = $1`) {
		t.Errorf("field name was not quoted: %q", query)
	}
}

func TestBuildListQuery_Nil(t *testing.T) {
	query, args := BuildListQuery(nil)
	if query != "" || args != nil {
		t.Errorf("expected empty result for nil options")
	}
}

func TestOperatorFor(t *testing.T) {
	tests := map[string]ConditionType{
		"equals":   Equal,
		"EQ":       Equal,
		"not":      NotEqual,
		"gte":      GreaterThanOrEqual,
		"contains": ILike,
		"in":       In,
	}
	for name, want := range tests {
		got, ok := OperatorFor(name)
		if !ok || got != want {
			t.Errorf("OperatorFor(%q) = %q, %v", name, got, ok)
		}
	}
	if _, ok := OperatorFor("raw"); ok {
		t.Errorf("expected unknown operator to be rejected")
	}
}
