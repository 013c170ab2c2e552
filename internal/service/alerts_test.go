package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"alerthub/internal/channel"
	"alerthub/internal/dispatch"
	"alerthub/internal/models"
	"alerthub/internal/repository"
)

type fixture struct {
	svc   *AlertService
	db    *repository.SQLiteDB
	inbox *channel.InAppChannel
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := repository.NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	registry := channel.NewRegistry()
	inbox := channel.NewInAppChannel()
	registry.Register(inbox)

	dispatcher := dispatch.NewDispatcher(registry, db, 4, time.Second)
	return &fixture{
		svc:   NewAlertService(db, db, db, dispatcher),
		db:    db,
		inbox: inbox,
	}
}

func (f *fixture) seedTeamUser(t *testing.T, teamID, userID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	if err := f.db.CreateUser(ctx, &models.User{
		ID: userID, Name: "user " + userID, Email: userID + "@org.com",
		TeamID: teamID, OrganizationID: "org_001", CreatedAt: now,
	}); err != nil {
		t.Fatalf("seed user failed: %v", err)
	}
}

func validInput() CreateAlertInput {
	now := time.Now()
	start := now.Add(-time.Minute)
	expiry := now.Add(24 * time.Hour)
	return CreateAlertInput{
		Title:            "Planned maintenance",
		Message:          "Expect brief downtime",
		Severity:         "warning",
		VisibilityType:   "team",
		VisibilityTarget: "team_1",
		StartTime:        &start,
		ExpiryTime:       &expiry,
		CreatedBy:        "admin_1",
	}
}

func TestCreateAlert_AppliesDefaults(t *testing.T) {
	f := setup(t)
	f.seedTeamUser(t, "team_1", "u1")

	alert, result, err := f.svc.CreateAlert(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateAlert failed: %v", err)
	}
	if alert.DeliveryType != models.DeliveryInApp {
		t.Errorf("expected default delivery_type in_app, got %s", alert.DeliveryType)
	}
	if alert.ReminderFrequencyHours != 2 || !alert.RemindersEnabled {
		t.Errorf("expected default reminder settings, got %d/%v",
			alert.ReminderFrequencyHours, alert.RemindersEnabled)
	}
	if alert.Status != models.StatusActive {
		t.Errorf("expected active status, got %s", alert.Status)
	}
	if result == nil || result.Successful != 1 {
		t.Errorf("expected 1 successful delivery, got %+v", result)
	}
}

func TestCreateAlert_ValidationListsMissingFields(t *testing.T) {
	f := setup(t)

	in := validInput()
	in.Title = ""
	in.CreatedBy = ""

	_, _, err := f.svc.CreateAlert(context.Background(), in)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(verr.Error(), "title") || !strings.Contains(verr.Error(), "created_by") {
		t.Errorf("expected both missing fields named, got %q", verr.Error())
	}
}

func TestCreateAlert_RejectsInvertedWindow(t *testing.T) {
	f := setup(t)

	in := validInput()
	start := time.Now().Add(48 * time.Hour)
	in.StartTime = &start

	_, _, err := f.svc.CreateAlert(context.Background(), in)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for inverted window, got %v", err)
	}
}

func TestCreateAlert_EmptyAudience(t *testing.T) {
	f := setup(t)

	alert, result, err := f.svc.CreateAlert(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateAlert failed: %v", err)
	}
	if alert == nil {
		t.Fatal("expected alert persisted despite empty audience")
	}
	if result != nil {
		t.Errorf("expected nil delivery result, got %+v", result)
	}

	got, err := f.db.GetAlertByID(context.Background(), alert.ID)
	if err != nil || got == nil {
		t.Errorf("expected alert retrievable after create, got %v/%v", got, err)
	}
}

func TestResolveTargetUsers_Scopes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.seedTeamUser(t, "team_1", "u1")
	f.seedTeamUser(t, "team_1", "u2")
	f.seedTeamUser(t, "team_2", "u3")

	org := &models.Alert{VisibilityType: models.VisibilityOrganization, VisibilityTarget: "org_001"}
	users, err := f.svc.ResolveTargetUsers(ctx, org)
	if err != nil || len(users) != 3 {
		t.Errorf("expected 3 org users, got %d (%v)", len(users), err)
	}

	team := &models.Alert{VisibilityType: models.VisibilityTeam, VisibilityTarget: "team_1"}
	users, err = f.svc.ResolveTargetUsers(ctx, team)
	if err != nil || len(users) != 2 {
		t.Errorf("expected 2 team users, got %d (%v)", len(users), err)
	}

	single := &models.Alert{VisibilityType: models.VisibilityUser, VisibilityTarget: "u3"}
	users, err = f.svc.ResolveTargetUsers(ctx, single)
	if err != nil || len(users) != 1 || users[0].ID != "u3" {
		t.Errorf("expected just u3, got %+v (%v)", users, err)
	}

	missing := &models.Alert{VisibilityType: models.VisibilityUser, VisibilityTarget: "ghost"}
	users, err = f.svc.ResolveTargetUsers(ctx, missing)
	if err != nil || len(users) != 0 {
		t.Errorf("expected no users for unknown target, got %+v (%v)", users, err)
	}
}

func TestMarkReadAndSnooze_PersistState(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.seedTeamUser(t, "team_1", "u1")

	alert, _, err := f.svc.CreateAlert(ctx, validInput())
	if err != nil {
		t.Fatalf("CreateAlert failed: %v", err)
	}

	if err := f.svc.MarkRead(ctx, "u1", alert.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	pref, err := f.db.GetOrCreate(ctx, "u1", alert.ID)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if pref.State != models.StateRead || pref.ReadAt == nil {
		t.Errorf("expected read state persisted, got %+v", pref)
	}

	if err := f.svc.Snooze(ctx, "u1", alert.ID); err != nil {
		t.Fatalf("Snooze failed: %v", err)
	}
	pref, _ = f.db.GetOrCreate(ctx, "u1", alert.ID)
	if pref.State != models.StateSnoozed || pref.SnoozedUntil == nil {
		t.Errorf("expected snoozed state persisted, got %+v", pref)
	}
	if !pref.SnoozedUntil.After(time.Now()) {
		t.Errorf("expected snoozed_until in the future, got %v", pref.SnoozedUntil)
	}
}

func TestListUserAlerts_JoinsState(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.seedTeamUser(t, "team_1", "u1")
	f.seedTeamUser(t, "team_2", "outsider")

	alert, _, err := f.svc.CreateAlert(ctx, validInput())
	if err != nil {
		t.Fatalf("CreateAlert failed: %v", err)
	}

	got, err := f.svc.ListUserAlerts(ctx, "u1")
	if err != nil {
		t.Fatalf("ListUserAlerts failed: %v", err)
	}
	if len(got) != 1 || got[0].Alert.ID != alert.ID || got[0].State != models.StateUnread {
		t.Errorf("unexpected listing: %+v", got)
	}

	none, err := f.svc.ListUserAlerts(ctx, "outsider")
	if err != nil {
		t.Fatalf("ListUserAlerts failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected empty listing for out-of-scope user, got %+v", none)
	}
}
