package database

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/halver/copysig/shared"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
)

const (
	// SQL statements.
	createSignalTableSQL   = "CREATE TABLE IF NOT EXISTS signal (id TEXT PRIMARY KEY, pair TEXT, timeframe TEXT, direction INTEGER, confidence INTEGER, entryprice REAL, stoploss REAL, takeprofit REAL, riskreward REAL, analysis TEXT, exitprice REAL, pnlpercent REAL, status INTEGER, createdon INTEGER, closedon INTEGER)"
	createMetadataTableSQL = "CREATE TABLE IF NOT EXISTS metadata (id TEXT PRIMARY KEY, total INTEGER, wins INTEGER, winpercent REAL, losses INTEGER, losspercent REAL, createdon INTEGER)"
	persistClosedSignalSQL = "INSERT INTO signal(id, pair, timeframe, direction, confidence, entryprice, stoploss, takeprofit, riskreward, analysis, exitprice, pnlpercent, status, createdon, closedon) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)"
	findMetadataSQL        = "SELECT * FROM metadata WHERE id = ?"
	updateMetadataSQL      = "UPDATE metadata SET total = total + 1, wins = wins + ?, winpercent = winpercent + ?, losses = losses + ?, losspercent = losspercent + ? WHERE id = ?"
	persistMetadataSQL     = "INSERT INTO metadata(id, total, wins, winpercent, losses, losspercent, createdon) VALUES(?,?,?,?,?,?,?)"
)

// SignalStorer defines the requirements for storing signals.
type SignalStorer interface {
	// PersistClosedSignal stores the provided closed signal to the database.
	PersistClosedSignal(ctx context.Context, signal *shared.Signal) error
}

// DatabaseConfig is the configuration for the database.
type DatabaseConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Logger is the database logger.
	Logger zerolog.Logger
}

// Database represents the database connection.
type Database struct {
	cfg    *DatabaseConfig
	client *rqlitehttp.Client
}

// Ensure the database implements the SignalStorer interface.
var _ SignalStorer = (*Database)(nil)

// NewDatabase initializes a new database connection.
func NewDatabase(ctx context.Context, cfg *DatabaseConfig) (*Database, error) {
	httpc := &http.Client{Timeout: time.Second * 5}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating database client: %w", err)
	}

	client.SetBasicAuth(cfg.User, cfg.Pass)

	db := &Database{
		cfg:    cfg,
		client: client,
	}

	err = db.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping database: %w", err)
	}

	return db, nil
}

// bootstrap initializes the database.
func (db *Database) bootstrap(ctx context.Context) error {
	_, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createMetadataTableSQL},
		{SQL: createSignalTableSQL},
	}, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	return nil
}

// generateMetadataID generates deterministic ids for metadata using the
// current month, week and pair.
func generateMetadataID(currentTime time.Time, pair string) string {
	month := currentTime.Month().String()
	week := currentTime.Day() / 7

	id := fmt.Sprintf("%s-Week-%d-%s", month, week, pair)
	return id
}

// classifyOutcome tallies the provided closed signal for the weekly
// metadata. A signal expiring at its entry price closes flat, it counts as
// neither a win nor a loss.
func classifyOutcome(signal *shared.Signal) (win int, winpercent float64, loss int, losspercent float64) {
	if !signal.Status.Terminal() {
		return 0, 0, 0, 0
	}

	switch {
	case signal.PNLPercent > 0:
		win = 1
		winpercent = signal.PNLPercent
	case signal.PNLPercent < 0:
		loss = 1
		losspercent = signal.PNLPercent
	}

	return win, winpercent, loss, losspercent
}

// PersistClosedSignal stores the provided closed signal to the database.
func (db *Database) PersistClosedSignal(ctx context.Context, signal *shared.Signal) error {
	_, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{
			SQL: persistClosedSignalSQL,
			PositionalParams: []any{signal.ID, signal.Pair, signal.Timeframe.String(), signal.Direction,
				signal.Confidence, signal.EntryPrice, signal.StopLoss, signal.TakeProfit,
				signal.RiskReward, signal.Analysis, signal.ExitPrice, signal.PNLPercent,
				signal.Status, signal.CreatedOn.Unix(), signal.ClosedOn.Unix()},
		},
	}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return err
	}

	win, winpercent, loss, losspercent := classifyOutcome(signal)
	if !signal.Status.Terminal() {
		db.cfg.Logger.Error().Msgf("persisting signal without a terminal status: %s", spew.Sdump(signal))
	}

	now := time.Now().UTC()

	id := generateMetadataID(now, signal.Pair)
	resp, err := db.client.QuerySingle(ctx, findMetadataSQL, id)
	if err != nil {
		return err
	}

	exists := len(resp.GetQueryResultsAssoc()) > 0
	switch {
	case exists:
		resp, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
			{
				SQL:              updateMetadataSQL,
				PositionalParams: []any{win, winpercent, loss, losspercent, id},
			},
		}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
		if err != nil {
			return err
		}
		has, idx, errStr := resp.HasError()
		if has {
			return fmt.Errorf("updating metadata %s: %d -> %s", id, idx, errStr)
		}
	default:
		resp, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
			{
				SQL:              persistMetadataSQL,
				PositionalParams: []any{id, 1, win, winpercent, loss, losspercent, now.Unix()},
			},
		}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
		if err != nil {
			return err
		}
		has, idx, errStr := resp.HasError()
		if has {
			return fmt.Errorf("persisting metadata %s: %d -> %s", id, idx, errStr)
		}
	}

	return nil
}
