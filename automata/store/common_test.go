package store

import (
	"context"
	"errors"
	"slices"
	"testing"
)

// testStoreContract runs the behaviour every Store[rune] implementation must
// share.
func testStoreContract(t *testing.T, st Store[rune]) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing run", func(t *testing.T) {
		if _, err := st.LoadRun(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := st.LoadLatest(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("journal ordered by seq", func(t *testing.T) {
		recs := []TokenRecord[rune]{
			{Seq: 1, Rule: "space", Offset: 3, End: 4, Units: []rune(" ")},
			{Seq: 0, Rule: "ident", Offset: 0, End: 3, Units: []rune("foo")},
			{Seq: 2, Rule: "number", Offset: 4, End: 6, Units: []rune("42")},
		}
		for _, r := range recs {
			if err := st.SaveToken(ctx, "run-order", r); err != nil {
				t.Fatalf("SaveToken: %v", err)
			}
		}

		got, err := st.LoadRun(ctx, "run-order")
		if err != nil {
			t.Fatalf("LoadRun: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 tokens, got %d", len(got))
		}
		for i, want := range []string{"foo", " ", "42"} {
			if got[i].Seq != i || string(got[i].Units) != want {
				t.Errorf("token %d = (%d, %q), want (%d, %q)", i, got[i].Seq, string(got[i].Units), i, want)
			}
		}

		latest, err := st.LoadLatest(ctx, "run-order")
		if err != nil {
			t.Fatalf("LoadLatest: %v", err)
		}
		if latest.Seq != 2 || latest.Rule != "number" || latest.Offset != 4 || latest.End != 6 {
			t.Errorf("unexpected latest token %+v", latest)
		}
	})

	t.Run("resave replaces", func(t *testing.T) {
		_ = st.SaveToken(ctx, "run-replace", TokenRecord[rune]{Seq: 0, Rule: "a", Units: []rune("x")})
		_ = st.SaveToken(ctx, "run-replace", TokenRecord[rune]{Seq: 0, Rule: "b", Units: []rune("yz")})

		got, err := st.LoadRun(ctx, "run-replace")
		if err != nil {
			t.Fatalf("LoadRun: %v", err)
		}
		if len(got) != 1 || got[0].Rule != "b" || !slices.Equal(got[0].Units, []rune("yz")) {
			t.Errorf("expected single replaced token, got %+v", got)
		}
	})

	t.Run("runs are isolated", func(t *testing.T) {
		_ = st.SaveToken(ctx, "run-a", TokenRecord[rune]{Seq: 0, Rule: "a", Units: []rune("a")})
		_ = st.SaveToken(ctx, "run-b", TokenRecord[rune]{Seq: 0, Rule: "b", Units: []rune("b")})

		a, _ := st.LoadRun(ctx, "run-a")
		if len(a) != 1 || a[0].Rule != "a" {
			t.Errorf("run-a polluted: %+v", a)
		}
	})

	t.Run("checkpoints", func(t *testing.T) {
		if _, err := st.LoadCheckpoint(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		cp := Checkpoint{ID: "cp-1", RunID: "run-order", Seq: 2, Offset: 4}
		if err := st.SaveCheckpoint(ctx, cp); err != nil {
			t.Fatalf("SaveCheckpoint: %v", err)
		}
		got, err := st.LoadCheckpoint(ctx, "cp-1")
		if err != nil {
			t.Fatalf("LoadCheckpoint: %v", err)
		}
		if got != cp {
			t.Errorf("expected %+v, got %+v", cp, got)
		}

		cp.Seq, cp.Offset = 3, 6
		if err := st.SaveCheckpoint(ctx, cp); err != nil {
			t.Fatalf("SaveCheckpoint overwrite: %v", err)
		}
		if got, _ := st.LoadCheckpoint(ctx, "cp-1"); got != cp {
			t.Errorf("expected overwritten %+v, got %+v", cp, got)
		}
	})
}
