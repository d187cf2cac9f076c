package sqlite

import (
	"context"
	"testing"
)

func TestSubscribe_Idempotent(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "sub@example.com")
	question := createTestQuestion(t, db, user.ID, "q")
	ctx := context.Background()

	// Subscribing twice has the effect of once.
	for i := 0; i < 2; i++ {
		if err := db.Subscribe(ctx, user.ID, question.ID); err != nil {
			t.Fatalf("Subscribe() #%d error = %v", i+1, err)
		}
	}

	subscribed, err := db.IsSubscribed(ctx, user.ID, question.ID)
	if err != nil {
		t.Fatalf("IsSubscribed() error = %v", err)
	}
	if !subscribed {
		t.Error("IsSubscribed() = false, want true")
	}

	subs, err := db.ListSubscribers(ctx, question.ID)
	if err != nil {
		t.Fatalf("ListSubscribers() error = %v", err)
	}
	if len(subs) != 1 {
		t.Errorf("got %d subscribers, want 1", len(subs))
	}
}

func TestUnsubscribe(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "sub@example.com")
	question := createTestQuestion(t, db, user.ID, "q")
	ctx := context.Background()

	if err := db.Subscribe(ctx, user.ID, question.ID); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if err := db.Unsubscribe(ctx, user.ID, question.ID); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}

	subscribed, _ := db.IsSubscribed(ctx, user.ID, question.ID)
	if subscribed {
		t.Error("IsSubscribed() = true after Unsubscribe()")
	}

	// Unsubscribing without a subscription is a no-op, not an error.
	if err := db.Unsubscribe(ctx, user.ID, question.ID); err != nil {
		t.Errorf("Unsubscribe() without subscription error = %v, want nil", err)
	}
}

func TestListSubscribers_ReturnsUsers(t *testing.T) {
	db := newTestDB(t)
	asker := createTestUser(t, db, "asker@example.com")
	watcher := createTestUser(t, db, "watcher@example.com")
	question := createTestQuestion(t, db, asker.ID, "q")
	ctx := context.Background()

	for _, uid := range []string{asker.ID, watcher.ID} {
		if err := db.Subscribe(ctx, uid, question.ID); err != nil {
			t.Fatalf("Subscribe() error = %v", err)
		}
	}

	subs, err := db.ListSubscribers(ctx, question.ID)
	if err != nil {
		t.Fatalf("ListSubscribers() error = %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("got %d subscribers, want 2", len(subs))
	}

	emails := map[string]bool{}
	for _, u := range subs {
		emails[u.Email] = true
	}
	if !emails["asker@example.com"] || !emails["watcher@example.com"] {
		t.Errorf("unexpected subscriber set: %v", emails)
	}
}

func TestDeleteSubscriptionsByQuestion(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "sub@example.com")
	question := createTestQuestion(t, db, user.ID, "q")
	ctx := context.Background()

	if err := db.Subscribe(ctx, user.ID, question.ID); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if err := db.DeleteSubscriptionsByQuestion(ctx, question.ID); err != nil {
		t.Fatalf("DeleteSubscriptionsByQuestion() error = %v", err)
	}

	subscribed, _ := db.IsSubscribed(ctx, user.ID, question.ID)
	if subscribed {
		t.Error("subscription should be gone")
	}
}
