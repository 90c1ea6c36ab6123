package provider

import (
	"context"
	"path/filepath"
	"testing"
)

func TestPaginateClampsAndReportsTotal(t *testing.T) {
	svc, err := New(nil, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	page, _ := svc.Radios(context.Background(), 0, 1)
	if len(page.Items) != 1 || page.TotalItems != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}

	page, _ = svc.Radios(context.Background(), 10, 10)
	if len(page.Items) != 0 || page.TotalItems != 2 {
		t.Fatalf("expected empty page past the end, got %+v", page)
	}
}

func TestGlobalSearchIsCaseInsensitive(t *testing.T) {
	svc, _ := New(nil, "")
	page, err := svc.GlobalSearch(context.Background(), "jazz", 0, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Name != "Jazz 24" {
		t.Fatalf("expected to find Jazz 24, got %+v", page.Items)
	}
}

func TestRoomFavouritesAddDeletePersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "favourites.json")

	svc, err := New(nil, path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	if err := svc.RoomFavAction(ctx, 7, "add", Favourite{ID: "fav-1", Provider: "radio", Title: "WXYZ"}, 0); err != nil {
		t.Fatalf("add: %v", err)
	}

	page, err := svc.RoomFavourites(ctx, 7, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "fav-1" {
		t.Fatalf("expected one favourite fav-1, got %+v", page.Items)
	}

	reloaded, err := New(nil, path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	page, _ = reloaded.RoomFavourites(ctx, 7, 0, 10)
	if len(page.Items) != 1 {
		t.Fatalf("expected favourite to survive reload, got %+v", page.Items)
	}

	if err := svc.RoomFavAction(ctx, 7, "delete", Favourite{ID: "fav-1"}, 0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	page, _ = svc.RoomFavourites(ctx, 7, 0, 10)
	if len(page.Items) != 0 {
		t.Fatalf("expected favourite removed, got %+v", page.Items)
	}
}

func TestResolveMediaItemPayload(t *testing.T) {
	svc, _ := New(nil, "")
	target, err := svc.ResolveMediaItem(context.Background(), "library:local:track:musicassistant:42", "", false)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if target.Payload["id"] != "library:local:track:musicassistant:42" {
		t.Fatalf("unexpected payload: %+v", target.Payload)
	}
	wantArgs := []string{"library:local:track:musicassistant:42", "", "false"}
	if len(target.Args) != len(wantArgs) {
		t.Fatalf("expected args %v, got %v", wantArgs, target.Args)
	}
	for i, a := range wantArgs {
		if target.Args[i] != a {
			t.Fatalf("expected args %v, got %v", wantArgs, target.Args)
		}
	}
}
