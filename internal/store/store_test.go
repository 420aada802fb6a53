package store_test

import (
	"errors"
	"testing"

	"chesslink/internal/domain"
	"chesslink/internal/game"
	"chesslink/internal/rules"
	"chesslink/internal/store"
)

func TestIdentity_SaveLoad_OK(t *testing.T) {
	home := t.TempDir()
	pass := "pass"

	var ids domain.IdentityStore = store.NewIdentityFileStore(home)

	id := domain.Identity{
		XPub:   domain.X25519Public{1},
		XPriv:  domain.X25519Private{2},
		EdPub:  domain.Ed25519Public{3},
		EdPriv: domain.Ed25519Private{4},
	}

	if err := ids.SaveIdentity(pass, id); err != nil {
		t.Fatalf("save identity: %v", err)
	}

	got, err := ids.LoadIdentity(pass)
	if err != nil {
		t.Fatalf("load identity: %v", err)
	}
	if got.XPub != id.XPub || got.EdPub != id.EdPub {
		t.Fatalf("mismatch after load")
	}
}

func TestIdentity_WrongPassphrase_Fails(t *testing.T) {
	home := t.TempDir()
	var ids domain.IdentityStore = store.NewIdentityFileStore(home)

	id := domain.Identity{XPub: domain.X25519Public{1}, XPriv: domain.X25519Private{2}}

	if err := ids.SaveIdentity("correct", id); err != nil {
		t.Fatalf("save identity: %v", err)
	}
	if _, err := ids.LoadIdentity("wrong"); err == nil {
		t.Fatal("expected error with wrong passphrase")
	}
}

func TestIdentity_Missing_NotFound(t *testing.T) {
	ids := store.NewIdentityFileStore(t.TempDir())
	if _, err := ids.LoadIdentity("pass"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func savedGame(t *testing.T) domain.PersistedState {
	t.Helper()
	e := rules.NewMinimal()
	rec := game.NewGameRecord(e)
	for i, uci := range []string{"e2e4", "e7e5", "g1f3"} {
		m, err := game.ParseUCI(uci)
		if err != nil {
			t.Fatalf("ParseUCI: %v", err)
		}
		m.Seq = uint64(i + 1)
		if err := rec.Apply(e, m); err != nil {
			t.Fatalf("apply %s: %v", uci, err)
		}
	}
	return domain.PersistedState{
		Game:            *rec,
		Role:            "host",
		PeerFingerprint: "deadbeef00",
	}
}

func TestGame_SaveLoad_OK(t *testing.T) {
	home := t.TempDir()
	pass := "pass"
	games := store.NewGameFileStore(home)

	st := savedGame(t)
	if err := games.SaveGame(pass, st); err != nil {
		t.Fatalf("save game: %v", err)
	}

	got, err := games.LoadGame(pass)
	if err != nil {
		t.Fatalf("load game: %v", err)
	}
	if got.Game.GameID != st.Game.GameID {
		t.Fatal("game ID lost")
	}
	if len(got.Game.Moves) != 3 || got.Game.Position != st.Game.Position {
		t.Fatal("game state lost")
	}
	if got.Role != "host" || got.PeerFingerprint != "deadbeef00" {
		t.Fatal("session metadata lost")
	}
	if got.Version == 0 || got.SavedUTC == 0 {
		t.Fatal("save did not stamp version and time")
	}
}

func TestGame_WrongPassphrase_Fails(t *testing.T) {
	games := store.NewGameFileStore(t.TempDir())
	if err := games.SaveGame("correct", savedGame(t)); err != nil {
		t.Fatalf("save game: %v", err)
	}
	if _, err := games.LoadGame("wrong"); !errors.Is(err, store.ErrWrongPassphrase) {
		t.Fatalf("got %v, want ErrWrongPassphrase", err)
	}
}

func TestGame_Missing_NotFound(t *testing.T) {
	games := store.NewGameFileStore(t.TempDir())
	if _, err := games.LoadGame("pass"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestGame_SaveOverwrites(t *testing.T) {
	home := t.TempDir()
	games := store.NewGameFileStore(home)

	first := savedGame(t)
	if err := games.SaveGame("pass", first); err != nil {
		t.Fatalf("first save: %v", err)
	}
	second := savedGame(t)
	if err := games.SaveGame("pass", second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := games.LoadGame("pass")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Game.GameID != second.Game.GameID {
		t.Fatal("latest save did not win")
	}
}

func TestGame_Delete(t *testing.T) {
	games := store.NewGameFileStore(t.TempDir())
	if err := games.SaveGame("pass", savedGame(t)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := games.DeleteGame(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := games.LoadGame("pass"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound after delete", err)
	}
	// Deleting again is not an error.
	if err := games.DeleteGame(); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestTrust_SaveList(t *testing.T) {
	trust := store.NewTrustFileStore(t.TempDir())

	if err := trust.SavePeer(domain.TrustedPeer{Fingerprint: "aa", Name: "alice", Address: "10.0.0.1:5555"}); err != nil {
		t.Fatalf("save peer: %v", err)
	}

	p, ok, err := trust.LoadPeer("aa")
	if err != nil || !ok {
		t.Fatalf("load peer: ok=%v err=%v", ok, err)
	}
	if p.FirstSeen == 0 {
		t.Fatal("first save did not stamp FirstSeen")
	}
	firstSeen := p.FirstSeen

	// A later sighting keeps the original FirstSeen.
	if err := trust.SavePeer(domain.TrustedPeer{Fingerprint: "aa", Address: "10.0.0.2:5555"}); err != nil {
		t.Fatalf("re-save peer: %v", err)
	}
	p, _, err = trust.LoadPeer("aa")
	if err != nil {
		t.Fatalf("reload peer: %v", err)
	}
	if p.FirstSeen != firstSeen {
		t.Fatal("FirstSeen rewritten on update")
	}
	if p.Address != "10.0.0.2:5555" {
		t.Fatal("address not updated")
	}

	peers, err := trust.ListPeers()
	if err != nil {
		t.Fatalf("list peers: %v", err)
	}
	if len(peers) != 1 {
		t.Fatalf("got %d peers, want 1", len(peers))
	}

	if _, ok, _ := trust.LoadPeer("bb"); ok {
		t.Fatal("unknown fingerprint reported as known")
	}
}

func TestSettings_DefaultsAndRoundTrip(t *testing.T) {
	home := t.TempDir()
	settings := store.NewSettingsFileStore(home)

	got, err := settings.Load()
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if got != store.DefaultSettings() {
		t.Fatalf("missing file did not yield defaults: %+v", got)
	}

	got.Port = 7777
	got.PlayerName = "magnus"
	got.AutoSave = false
	if err := settings.Save(got); err != nil {
		t.Fatalf("save: %v", err)
	}

	back, err := settings.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if back != got {
		t.Fatalf("got %+v, want %+v", back, got)
	}
}
