package store

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

// forEachStore runs fn against every available backend. MongoDB is only
// exercised when NAJDENO_TEST_MONGO_URI points at a server.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()

	t.Run("sqlite", func(t *testing.T) {
		fn(t, NewSQLite(db.NewTestDB(t)))
	})

	uri := os.Getenv("NAJDENO_TEST_MONGO_URI")
	if uri == "" {
		return
	}
	t.Run("mongo", func(t *testing.T) {
		ctx := context.Background()
		m, err := OpenMongo(ctx, uri, "najdeno_test_"+uuid.NewString()[:8])
		if err != nil {
			t.Fatalf("OpenMongo: %v", err)
		}
		if err := m.EnsureIndexes(ctx); err != nil {
			t.Fatalf("EnsureIndexes: %v", err)
		}
		t.Cleanup(func() {
			_ = m.users.Database().Drop(ctx)
			_ = m.Close(ctx)
		})
		fn(t, m)
	})
}

func createTestUser(t *testing.T, s Store, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, PasswordHash: "hash", Contact: "+919876543210"}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}

func TestCreateAndGetUser(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		user := createTestUser(t, s, "testuser")
		if user.ID == "" {
			t.Fatal("expected generated id")
		}

		got, err := s.GetUser(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUser: %v", err)
		}
		if got == nil {
			t.Fatal("expected user, got nil")
		}
		if got.Username != "testuser" {
			t.Errorf("expected username 'testuser', got %q", got.Username)
		}
		if got.Contact != "+919876543210" {
			t.Errorf("expected contact to round-trip, got %q", got.Contact)
		}
		if got.PasswordHash != "hash" {
			t.Errorf("expected password hash to round-trip, got %q", got.PasswordHash)
		}

		missing, err := s.GetUser(ctx, "nope")
		if err != nil {
			t.Fatalf("GetUser missing: %v", err)
		}
		if missing != nil {
			t.Error("expected nil for missing user")
		}
	})
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		createTestUser(t, s, "alice")

		err := s.CreateUser(context.Background(), &model.User{Username: "alice", PasswordHash: "x"})
		if err != ErrUsernameTaken {
			t.Errorf("expected ErrUsernameTaken, got %v", err)
		}
	})
}

func TestGetUserByUsername(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		createTestUser(t, s, "alice")

		user, err := s.GetUserByUsername(ctx, "alice")
		if err != nil {
			t.Fatalf("GetUserByUsername: %v", err)
		}
		if user == nil || user.Username != "alice" {
			t.Fatalf("expected alice, got %+v", user)
		}

		missing, err := s.GetUserByUsername(ctx, "bob")
		if err != nil {
			t.Fatalf("GetUserByUsername: %v", err)
		}
		if missing != nil {
			t.Error("expected nil for missing user")
		}
	})
}

func TestUpdateUserContactAndPassword(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		user := createTestUser(t, s, "pwuser")

		if err := s.UpdateUserContact(ctx, user.ID, "+911111111111"); err != nil {
			t.Fatalf("UpdateUserContact: %v", err)
		}
		if err := s.UpdateUserPassword(ctx, user.ID, "newhash"); err != nil {
			t.Fatalf("UpdateUserPassword: %v", err)
		}

		got, _ := s.GetUser(ctx, user.ID)
		if got.Contact != "+911111111111" {
			t.Errorf("expected updated contact, got %q", got.Contact)
		}
		if got.PasswordHash != "newhash" {
			t.Errorf("expected password hash 'newhash', got %q", got.PasswordHash)
		}
	})
}

func newTestItem(owner *model.User, title, typ string) *model.Item {
	return &model.Item{
		Title:       title,
		Description: "left near the canteen",
		Type:        typ,
		Location:    "Library",
		Contact:     owner.Contact,
		UserID:      owner.ID,
		Reporter:    owner.Username,
	}
}

func TestCreateAndGetItem(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		owner := createTestUser(t, s, "reporter")

		item := newTestItem(owner, "Blue umbrella", model.ItemTypeLost)
		item.ImageURL = "/uploads/abc.jpg"
		item.ImageKey = "abc.jpg"
		if err := s.CreateItem(ctx, item); err != nil {
			t.Fatalf("CreateItem: %v", err)
		}

		got, err := s.GetItem(ctx, item.ID)
		if err != nil {
			t.Fatalf("GetItem: %v", err)
		}
		if got == nil {
			t.Fatal("expected item, got nil")
		}
		if got.Title != "Blue umbrella" || got.Type != model.ItemTypeLost {
			t.Errorf("unexpected item %+v", got)
		}
		if got.UserID != owner.ID || got.Reporter != "reporter" {
			t.Errorf("expected owner fields to round-trip, got %+v", got)
		}
		if got.ImageKey != "abc.jpg" {
			t.Errorf("expected image key, got %q", got.ImageKey)
		}
		if got.CreatedAt.IsZero() {
			t.Error("expected created timestamp")
		}

		missing, _ := s.GetItem(ctx, "missing")
		if missing != nil {
			t.Error("expected nil for missing item")
		}
	})
}

func TestListItemsNewestFirstAndFiltered(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		alice := createTestUser(t, s, "alice")
		bob := createTestUser(t, s, "bob")

		base := time.Now().UTC().Add(-time.Hour)
		fixtures := []struct {
			owner *model.User
			title string
			typ   string
		}{
			{alice, "Black wallet", model.ItemTypeLost},
			{bob, "Student ID card", model.ItemTypeFound},
			{alice, "Calculator 100%", model.ItemTypeFound},
		}
		for i, f := range fixtures {
			item := newTestItem(f.owner, f.title, f.typ)
			item.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			if err := s.CreateItem(ctx, item); err != nil {
				t.Fatalf("CreateItem: %v", err)
			}
		}

		all, err := s.ListItems(ctx, model.ItemFilter{})
		if err != nil {
			t.Fatalf("ListItems: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 items, got %d", len(all))
		}
		if all[0].Title != "Calculator 100%" || all[2].Title != "Black wallet" {
			t.Errorf("expected newest first, got %q ... %q", all[0].Title, all[2].Title)
		}

		found, _ := s.ListItems(ctx, model.ItemFilter{Type: model.ItemTypeFound})
		if len(found) != 2 {
			t.Errorf("expected 2 found items, got %d", len(found))
		}

		mine, _ := s.ListItems(ctx, model.ItemFilter{UserID: alice.ID})
		if len(mine) != 2 {
			t.Errorf("expected 2 items for alice, got %d", len(mine))
		}

		search, _ := s.ListItems(ctx, model.ItemFilter{Query: "WALLET"})
		if len(search) != 1 || search[0].Title != "Black wallet" {
			t.Errorf("expected case-insensitive title match, got %+v", search)
		}

		byReporter, _ := s.ListItems(ctx, model.ItemFilter{Query: "bob"})
		if len(byReporter) != 1 {
			t.Errorf("expected reporter match, got %d", len(byReporter))
		}

		// Wildcards in the query are literal.
		literal, _ := s.ListItems(ctx, model.ItemFilter{Query: "100%"})
		if len(literal) != 1 {
			t.Errorf("expected literal percent match, got %d", len(literal))
		}
		none, _ := s.ListItems(ctx, model.ItemFilter{Query: "%"})
		if len(none) != 1 {
			t.Errorf("expected only the item containing %%, got %d", len(none))
		}

		page, _ := s.ListItems(ctx, model.ItemFilter{Limit: 1, Offset: 1})
		if len(page) != 1 || page[0].Title != "Student ID card" {
			t.Errorf("unexpected page %+v", page)
		}
	})
}

func TestListItemsSearchFoldsUnicodeCase(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		owner := createTestUser(t, s, "reporter")

		if err := s.CreateItem(ctx, newTestItem(owner, "Café Élan ÖL", model.ItemTypeLost)); err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
		if err := s.CreateItem(ctx, newTestItem(owner, "Umbrella", model.ItemTypeFound)); err != nil {
			t.Fatalf("CreateItem: %v", err)
		}

		for _, q := range []string{"café", "CAFÉ", "élan", "ÉLAN", "öl"} {
			items, err := s.ListItems(ctx, model.ItemFilter{Query: q})
			if err != nil {
				t.Fatalf("ListItems(%q): %v", q, err)
			}
			if len(items) != 1 || items[0].Title != "Café Élan ÖL" {
				t.Errorf("query %q: expected the accented item, got %d results", q, len(items))
			}
		}
	})
}

func TestListItemsOrdersSubsecondTimestamps(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		owner := createTestUser(t, s, "reporter")

		base := time.Date(2026, 10, 14, 5, 45, 44, 0, time.UTC)
		offsets := map[string]time.Duration{
			"Whole second": 0,
			"Earlier":      700 * time.Millisecond,
			"Later":        750 * time.Millisecond,
		}
		for title, offset := range offsets {
			item := newTestItem(owner, title, model.ItemTypeLost)
			item.CreatedAt = base.Add(offset)
			if err := s.CreateItem(ctx, item); err != nil {
				t.Fatalf("CreateItem: %v", err)
			}
		}

		items, err := s.ListItems(ctx, model.ItemFilter{})
		if err != nil {
			t.Fatalf("ListItems: %v", err)
		}
		if len(items) != 3 {
			t.Fatalf("expected 3 items, got %d", len(items))
		}
		var titles []string
		for _, item := range items {
			titles = append(titles, item.Title)
		}
		if strings.Join(titles, ",") != "Later,Earlier,Whole second" {
			t.Errorf("expected newest first, got %v", titles)
		}
		if !items[0].CreatedAt.Equal(base.Add(750 * time.Millisecond)) {
			t.Errorf("expected created time to round-trip, got %v", items[0].CreatedAt)
		}
	})
}

func TestDeleteItemRequiresOwner(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		alice := createTestUser(t, s, "alice")
		bob := createTestUser(t, s, "bob")

		item := newTestItem(alice, "Keys", model.ItemTypeLost)
		if err := s.CreateItem(ctx, item); err != nil {
			t.Fatalf("CreateItem: %v", err)
		}

		deleted, err := s.DeleteItem(ctx, item.ID, bob.ID)
		if err != nil {
			t.Fatalf("DeleteItem: %v", err)
		}
		if deleted {
			t.Error("expected delete by non-owner to remove nothing")
		}

		deleted, err = s.DeleteItem(ctx, item.ID, alice.ID)
		if err != nil {
			t.Fatalf("DeleteItem: %v", err)
		}
		if !deleted {
			t.Error("expected owner delete to succeed")
		}

		got, _ := s.GetItem(ctx, item.ID)
		if got != nil {
			t.Error("expected item to be gone")
		}
	})
}

func TestRevokeAndCheckToken(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		revoked, err := s.IsTokenRevoked(ctx, "test-jti-1")
		if err != nil {
			t.Fatalf("IsTokenRevoked: %v", err)
		}
		if revoked {
			t.Error("expected token not to be revoked")
		}

		if err := s.RevokeToken(ctx, "test-jti-1", time.Now().Add(time.Hour)); err != nil {
			t.Fatalf("RevokeToken: %v", err)
		}
		// Revoking twice is not an error.
		if err := s.RevokeToken(ctx, "test-jti-1", time.Now().Add(time.Hour)); err != nil {
			t.Fatalf("second RevokeToken: %v", err)
		}

		revoked, _ = s.IsTokenRevoked(ctx, "test-jti-1")
		if !revoked {
			t.Error("expected token to be revoked")
		}

		revoked, _ = s.IsTokenRevoked(ctx, "test-jti-2")
		if revoked {
			t.Error("expected different token not to be revoked")
		}
	})
}

func TestGetJWTSecretGeneratesAndPersists(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		secret1, err := GetJWTSecret(ctx, s)
		if err != nil {
			t.Fatal(err)
		}
		if len(secret1) != 64 { // 32 bytes = 64 hex chars
			t.Fatalf("expected 64 hex chars, got %d", len(secret1))
		}

		secret2, err := GetJWTSecret(ctx, s)
		if err != nil {
			t.Fatal(err)
		}
		if secret1 != secret2 {
			t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
		}
	})
}
