package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "rating").
		From("rating_history").
		Where(Eq("season_number", 3), Neq("match_id", int64(42))).
		OrderBy("created_at DESC", "id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, rating FROM rating_history WHERE season_number = $1 AND match_id <> $2 ORDER BY created_at DESC, id DESC LIMIT 1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != 3 || args[1] != int64(42) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_NullConditions(t *testing.T) {
	query, _, err := Select("id").
		From("matches").
		Where(Eq("season_number", 3), NotNull("winner"), IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM matches WHERE season_number = $1 AND winner IS NOT NULL AND deleted_at IS NULL"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("player_season_stats").
		Columns("player_id", "season_number", "rating").
		Values("p1", 3, 1020).
		Suffix("ON CONFLICT (player_id, season_number) DO UPDATE SET rating = EXCLUDED.rating").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO player_season_stats (player_id, season_number, rating) VALUES ($1, $2, $3) ON CONFLICT (player_id, season_number) DO UPDATE SET rating = EXCLUDED.rating"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "p1" || args[1] != 3 || args[2] != 1020 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("rating_history").
		Set("rating", 1015).
		SetExpr("updated_at", "NOW()").
		Where(Eq("player_id", "p1"), Eq("match_id", int64(7))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE rating_history SET rating = $1, updated_at = NOW() WHERE player_id = $2 AND match_id = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != 1015 || args[1] != "p1" || args[2] != int64(7) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("match_players").
		Where(Eq("match_id", int64(7))).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM match_players WHERE match_id = $1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != int64(7) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder_RefusesUnconditioned(t *testing.T) {
	if _, _, err := DeleteFrom("matches").ToSQL(); err == nil {
		t.Fatal("expected error for delete without conditions")
	}
}
