// Package persistence provides SQLite-based episode trajectory storage.
// Every completed period is appended as one row, so an episode can be
// re-examined after the fact without re-running the simulation.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/marketsim/internal/market"
)

// DB wraps a SQLite connection for trajectory persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS episodes (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		steps INTEGER NOT NULL DEFAULT 0,
		terminated INTEGER NOT NULL DEFAULT 0,
		cumulative_profits_json TEXT
	);

	CREATE TABLE IF NOT EXISTS episode_steps (
		episode_id TEXT NOT NULL,
		time INTEGER NOT NULL,
		regime TEXT NOT NULL,
		supplier_shock REAL NOT NULL,
		substitute_pressure REAL NOT NULL,
		marginal_cost REAL NOT NULL,
		effective_demand REAL NOT NULL,
		prices_json TEXT NOT NULL,
		innovations_json TEXT NOT NULL,
		shares_json TEXT NOT NULL,
		profits_json TEXT NOT NULL,
		clamped_json TEXT NOT NULL,
		PRIMARY KEY (episode_id, time)
	);

	CREATE TABLE IF NOT EXISTS sim_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_steps_episode ON episode_steps(episode_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// EpisodeRow summarizes one stored episode.
type EpisodeRow struct {
	ID                    string  `db:"id" json:"id"`
	Seed                  int64   `db:"seed" json:"seed"`
	StartedAt             string  `db:"started_at" json:"started_at"`
	FinishedAt            *string `db:"finished_at" json:"finished_at,omitempty"`
	Steps                 int     `db:"steps" json:"steps"`
	Terminated            bool    `db:"terminated" json:"terminated"`
	CumulativeProfitsJSON *string `db:"cumulative_profits_json" json:"cumulative_profits_json,omitempty"`
}

// StepRow is one stored market period.
type StepRow struct {
	EpisodeID          string  `db:"episode_id" json:"episode_id"`
	Time               int     `db:"time" json:"time"`
	Regime             string  `db:"regime" json:"regime"`
	SupplierShock      float64 `db:"supplier_shock" json:"supplier_shock"`
	SubstitutePressure float64 `db:"substitute_pressure" json:"substitute_pressure"`
	MarginalCost       float64 `db:"marginal_cost" json:"marginal_cost"`
	EffectiveDemand    float64 `db:"effective_demand" json:"effective_demand"`
	PricesJSON         string  `db:"prices_json" json:"prices_json"`
	InnovationsJSON    string  `db:"innovations_json" json:"innovations_json"`
	SharesJSON         string  `db:"shares_json" json:"shares_json"`
	ProfitsJSON        string  `db:"profits_json" json:"profits_json"`
	ClampedJSON        string  `db:"clamped_json" json:"clamped_json"`
}

// BeginEpisode records a new episode row.
func (db *DB) BeginEpisode(id string, seed int64) error {
	_, err := db.conn.Exec(
		"INSERT INTO episodes (id, seed, started_at) VALUES (?, ?, ?)",
		id, seed, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// AppendStep stores one completed period for an episode.
func (db *DB) AppendStep(episodeID string, st market.State, profits [market.NumFirms]float64, clamped [market.NumFirms]bool) error {
	prices, _ := json.Marshal(st.Prices)
	innovations, _ := json.Marshal(st.InnovationStocks)
	shares, _ := json.Marshal(st.MarketShares)
	profitsJSON, _ := json.Marshal(profits)
	clampedJSON, _ := json.Marshal(clamped)

	_, err := db.conn.Exec(`INSERT INTO episode_steps
		(episode_id, time, regime, supplier_shock, substitute_pressure,
		 marginal_cost, effective_demand,
		 prices_json, innovations_json, shares_json, profits_json, clamped_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		episodeID, st.Time, st.Regime.String(), st.SupplierShock, st.SubstitutePressure,
		st.MarginalCost, st.EffectiveDemand,
		string(prices), string(innovations), string(shares), string(profitsJSON), string(clampedJSON),
	)
	if err != nil {
		return fmt.Errorf("insert step %d of episode %s: %w", st.Time, episodeID, err)
	}
	return nil
}

// FinishEpisode marks an episode complete with its final bookkeeping.
func (db *DB) FinishEpisode(id string, steps int, terminated bool, cumulativeProfits [market.NumFirms]float64) error {
	profits, _ := json.Marshal(cumulativeProfits)
	term := 0
	if terminated {
		term = 1
	}
	_, err := db.conn.Exec(
		`UPDATE episodes SET finished_at = ?, steps = ?, terminated = ?, cumulative_profits_json = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), steps, term, string(profits), id,
	)
	if err != nil {
		return fmt.Errorf("finish episode %s: %w", id, err)
	}
	slog.Info("episode saved", "id", id, "steps", steps, "terminated", terminated)
	return nil
}

// RecentEpisodes returns the most recent N episode summaries.
func (db *DB) RecentEpisodes(limit int) ([]EpisodeRow, error) {
	var rows []EpisodeRow
	err := db.conn.Select(&rows,
		"SELECT * FROM episodes ORDER BY started_at DESC LIMIT ?", limit)
	return rows, err
}

// EpisodeSteps returns all stored periods of one episode in time order.
func (db *DB) EpisodeSteps(episodeID string) ([]StepRow, error) {
	var rows []StepRow
	err := db.conn.Select(&rows,
		"SELECT * FROM episode_steps WHERE episode_id = ? ORDER BY time", episodeID)
	return rows, err
}

// SaveMeta stores a key-value pair in simulation metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO sim_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM sim_meta WHERE key = ?", key)
	return value, err
}
