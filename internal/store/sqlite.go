package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/yourorg/packetdoc/pkg/types"
)

// Run statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if err := s.Init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Init() error {
	if _, err := s.db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return err
	}
	if _, err := s.db.Exec(`PRAGMA busy_timeout=5000;`); err != nil {
		return err
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			assembly TEXT NOT NULL,
			metadata_path TEXT NOT NULL,
			docs_path TEXT NOT NULL,
			output_dir TEXT NOT NULL,
			packet_count INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS packets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			server TEXT NOT NULL,
			seq INTEGER NOT NULL,
			name TEXT NOT NULL,
			full_name TEXT NOT NULL,
			namespace TEXT NOT NULL,
			summary TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_packets_run ON packets(run_id);`,
		`CREATE TABLE IF NOT EXISTS packet_rows (
			packet_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			type_signature TEXT NOT NULL,
			field_name TEXT NOT NULL,
			summary TEXT NOT NULL,
			PRIMARY KEY(packet_id, position)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) CreateRun(assembly, metadataPath, docsPath, outputDir string) (*types.Run, error) {
	now := time.Now().UTC()
	run := &types.Run{
		ID:           uuid.NewString(),
		Assembly:     assembly,
		MetadataPath: metadataPath,
		DocsPath:     docsPath,
		OutputDir:    outputDir,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err := s.db.Exec(`INSERT INTO runs(id,assembly,metadata_path,docs_path,output_dir,packet_count,status,created_at,updated_at) VALUES(?,?,?,?,?,?,?,?,?)`,
		run.ID, run.Assembly, run.MetadataPath, run.DocsPath, run.OutputDir, run.PacketCount, run.Status, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (s *SQLiteStore) GetRun(id string) (*types.Run, error) {
	row := s.db.QueryRow(`SELECT id,assembly,metadata_path,docs_path,output_dir,packet_count,status,created_at,updated_at FROM runs WHERE id=?`, id)
	var out types.Run
	if err := row.Scan(&out.ID, &out.Assembly, &out.MetadataPath, &out.DocsPath, &out.OutputDir, &out.PacketCount, &out.Status, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SQLiteStore) UpdateRunStatus(id, status string) error {
	res, err := s.db.Exec(`UPDATE runs SET status=?, updated_at=? WHERE id=?`, status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) ListRuns() ([]types.Run, error) {
	rows, err := s.db.Query(`SELECT id,assembly,metadata_path,docs_path,output_dir,packet_count,status,created_at,updated_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []types.Run
	for rows.Next() {
		var r types.Run
		if err := rows.Scan(&r.ID, &r.Assembly, &r.MetadataPath, &r.DocsPath, &r.OutputDir, &r.PacketCount, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteRun(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM packet_rows WHERE packet_id IN (SELECT id FROM packets WHERE run_id=?)`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM packets WHERE run_id=?`, id); err != nil {
		return err
	}
	res, err := tx.Exec(`DELETE FROM runs WHERE id=?`, id)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveBook stores every packet of book under runID, replacing what the
// run held before, and marks the run completed.
func (s *SQLiteStore) SaveBook(runID string, book *types.Book) error {
	if book == nil {
		return errors.New("book is nil")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM packet_rows WHERE packet_id IN (SELECT id FROM packets WHERE run_id=?)`, runID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM packets WHERE run_id=?`, runID); err != nil {
		return err
	}
	packetStmt, err := tx.Prepare(`INSERT INTO packets(run_id,server,seq,name,full_name,namespace,summary) VALUES(?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer packetStmt.Close()
	rowStmt, err := tx.Prepare(`INSERT INTO packet_rows(packet_id,position,type_signature,field_name,summary) VALUES(?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer rowStmt.Close()

	seq := 0
	for _, srv := range book.Servers {
		for _, p := range srv.Packets {
			seq++
			res, err := packetStmt.Exec(runID, srv.Name, seq, p.Name, p.FullName, p.Namespace, p.Summary)
			if err != nil {
				return err
			}
			packetID, err := res.LastInsertId()
			if err != nil {
				return err
			}
			for i, r := range p.Rows {
				if _, err := rowStmt.Exec(packetID, i, r.TypeSignature, r.FieldName, r.Summary); err != nil {
					return err
				}
			}
		}
	}
	res, err := tx.Exec(`UPDATE runs SET assembly=?, packet_count=?, status=?, updated_at=? WHERE id=?`,
		book.Assembly, seq, StatusCompleted, time.Now().UTC(), runID)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetPackets(runID string) ([]types.PacketRecord, error) {
	rows, err := s.db.Query(`SELECT p.id,p.run_id,p.server,p.seq,p.name,p.full_name,p.namespace,p.summary,
		r.type_signature,r.field_name,r.summary
		FROM packets p LEFT JOIN packet_rows r ON r.packet_id=p.id
		WHERE p.run_id=? ORDER BY p.seq ASC, r.position ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]types.PacketRecord, 0)
	lastID := int64(-1)
	for rows.Next() {
		var (
			id                 int64
			rec                types.PacketRecord
			sig, field, rowSum sql.NullString
		)
		if err := rows.Scan(&id, &rec.RunID, &rec.Server, &rec.Seq, &rec.Name, &rec.FullName, &rec.Namespace, &rec.Summary, &sig, &field, &rowSum); err != nil {
			return nil, err
		}
		if id != lastID {
			rec.Rows = []types.Row{}
			out = append(out, rec)
			lastID = id
		}
		if sig.Valid {
			cur := &out[len(out)-1]
			cur.Rows = append(cur.Rows, types.Row{TypeSignature: sig.String, FieldName: field.String, Summary: rowSum.String})
		}
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return errors.New("store is nil")
	}
	return s.db.Close()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
