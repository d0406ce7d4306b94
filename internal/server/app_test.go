package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/booklib/internal/dbx"
	"github.com/dmitrijs2005/booklib/internal/server/config"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/books"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/users"
)

type fakeManager struct {
	migrateErr error
	migrated   bool
}

func (f *fakeManager) RunMigrations(context.Context, *sql.DB) error {
	f.migrated = true
	return f.migrateErr
}
func (f *fakeManager) Users(db dbx.DBTX) users.Repository { return users.NewPostgresRepository(db) }
func (f *fakeManager) Books(db dbx.DBTX) books.Repository { return books.NewPostgresRepository(db) }

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddr = "127.0.0.1:0"
	c.GRPCHealthAddr = "127.0.0.1:0"
	return c
}

func stubStorage(t *testing.T, m *fakeManager) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	origOpen, origManager := openDB, newRepositoryManager
	openDB = func(string) (*sql.DB, error) { return db, nil }
	newRepositoryManager = func() repomanager.RepositoryManager { return m }
	t.Cleanup(func() { openDB, newRepositoryManager = origOpen, origManager })

	return mock
}

func TestNewApp_OpenError(t *testing.T) {
	origOpen := openDB
	openDB = func(string) (*sql.DB, error) { return nil, errors.New("bad dsn") }
	t.Cleanup(func() { openDB = origOpen })

	_, err := NewApp(testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}

func TestNewApp_BadLogFormat(t *testing.T) {
	c := testConfig()
	c.LogFormat = "xml"

	_, err := NewApp(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logger init error")
}

func TestNewApp_PingErrorClosesDB(t *testing.T) {
	m := &fakeManager{}
	mock := stubStorage(t, m)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()

	_, err := NewApp(testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db ping error")
	assert.False(t, m.migrated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_MigrationErrorClosesDB(t *testing.T) {
	m := &fakeManager{migrateErr: errors.New("syntax error")}
	mock := stubStorage(t, m)
	mock.ExpectPing()
	mock.ExpectClose()

	_, err := NewApp(testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db migration error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApp_RunStopsOnCancelAndClosesDB(t *testing.T) {
	m := &fakeManager{}
	mock := stubStorage(t, m)
	mock.ExpectPing()
	mock.ExpectClose()

	app, err := NewApp(testConfig())
	require.NoError(t, err)
	require.True(t, m.migrated)
	require.NotNil(t, app.health)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApp_HealthDisabled(t *testing.T) {
	m := &fakeManager{}
	mock := stubStorage(t, m)
	mock.ExpectPing()

	c := testConfig()
	c.GRPCHealthAddr = ""

	app, err := NewApp(c)
	require.NoError(t, err)
	assert.Nil(t, app.health)
}

func TestApp_RunStopsWhenTransportFails(t *testing.T) {
	m := &fakeManager{}
	mock := stubStorage(t, m)
	mock.ExpectPing()
	mock.ExpectClose()

	c := testConfig()
	c.HTTPAddr = "127.0.0.1:99999"

	app, err := NewApp(c)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after the HTTP server failed")
	}
}
