package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/yourorg/packetdoc/pkg/types"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func sampleBook() *types.Book {
	return &types.Book{
		Assembly: "Rhisis.Network",
		Index:    "Packets",
		Servers: []types.Server{
			{Name: "Login", Packets: []types.Packet{{
				Name:      "Handshake",
				FullName:  "Rhisis.Network.Packets.Login.Handshake",
				Namespace: "Rhisis.Network.Packets.Login",
				Rows: []types.Row{
					{TypeSignature: "uint", FieldName: "sessionId", Summary: "Unique session identifier"},
					{TypeSignature: "string", FieldName: "version", Summary: "(Empty)"},
				},
			}}},
			{Name: "Cluster"},
			{Name: "World", Packets: []types.Packet{{
				Name:      "PingPacket",
				FullName:  "Rhisis.Network.Packets.World.PingPacket",
				Namespace: "Rhisis.Network.Packets.World",
				Summary:   "Keeps the connection alive.",
			}}},
		},
	}
}

func TestRunAndBookCRUD(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	run, err := s.CreateRun("", "network.yaml", "Rhisis.Network.xml", "./output")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(run.ID); err != nil {
		t.Fatalf("run id is not a uuid: %q", run.ID)
	}
	if run.Status != StatusPending {
		t.Fatalf("unexpected status %s", run.Status)
	}
	if err := s.SaveBook(run.ID, sampleBook()); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetRun(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.PacketCount != 2 || got.Status != StatusCompleted || got.Assembly != "Rhisis.Network" {
		t.Fatalf("run not updated: %+v", got)
	}

	packets, err := s.GetPackets(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(packets) != 2 {
		t.Fatalf("expected 2 packets, got %d", len(packets))
	}
	if packets[0].Name != "Handshake" || packets[0].Server != "Login" || len(packets[0].Rows) != 2 {
		t.Fatalf("unexpected first packet %+v", packets[0])
	}
	if packets[0].Rows[0].FieldName != "sessionId" || packets[0].Rows[1].TypeSignature != "string" {
		t.Fatalf("rows out of order: %+v", packets[0].Rows)
	}
	if packets[1].Name != "PingPacket" || packets[1].Seq != 2 || len(packets[1].Rows) != 0 {
		t.Fatalf("unexpected second packet %+v", packets[1])
	}
}

func TestSaveBookReplacesPackets(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	run, _ := s.CreateRun("Rhisis.Network", "a", "b", "c")
	_ = s.SaveBook(run.ID, sampleBook())
	book := sampleBook()
	book.Servers = book.Servers[:1]
	if err := s.SaveBook(run.ID, book); err != nil {
		t.Fatal(err)
	}
	packets, _ := s.GetPackets(run.ID)
	if len(packets) != 1 {
		t.Fatalf("expected packets replaced, got %d", len(packets))
	}
}

func TestUnknownRun(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	if _, err := s.GetRun("missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
	if err := s.UpdateRunStatus("missing", StatusFailed); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
	if err := s.DeleteRun("missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
	if err := s.SaveBook("missing", sampleBook()); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
}

func TestCascadeDelete(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	run, _ := s.CreateRun("Rhisis.Network", "a", "b", "c")
	_ = s.SaveBook(run.ID, sampleBook())
	if err := s.DeleteRun(run.ID); err != nil {
		t.Fatal(err)
	}
	if packets, _ := s.GetPackets(run.ID); len(packets) != 0 {
		t.Fatalf("expected packets deleted")
	}
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM packet_rows`).Scan(&n); err != nil || n != 0 {
		t.Fatalf("expected rows deleted, got %d err=%v", n, err)
	}
	if runs, _ := s.ListRuns(); len(runs) != 0 {
		t.Fatalf("expected no runs")
	}
}

func TestConcurrentReadWrite(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run, err := s.CreateRun("Rhisis.Network", "a", "b", "c")
			if err == nil {
				_ = s.SaveBook(run.ID, sampleBook())
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.ListRuns()
		}()
	}
	wg.Wait()

	runs, err := s.ListRuns()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) == 0 {
		t.Fatalf("expected runs")
	}
}
