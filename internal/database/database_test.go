package database

import (
	"context"
	"testing"

	"quill/internal/config"
	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func sqliteConfig() *config.Config {
	return &config.Config{
		Env:          "test",
		DBDriver:     config.DriverSQLite,
		DBSQLitePath: ":memory:",
		DBSchemaMode: SchemaModeSQL,
	}
}

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBDriver:                 config.DriverPostgres,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestConfigurePool_SQLiteSingleConnection(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, configurePool(db, sqliteConfig()))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestConnect_SQLiteAppliesSchema(t *testing.T) {
	db, err := Connect(sqliteConfig())
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable(&models.Post{}))
	assert.True(t, db.Migrator().HasTable(&models.Like{}))
	assert.True(t, db.Migrator().HasIndex(&models.Post{}, "idx_posts_slug"))
	assert.True(t, db.Migrator().HasIndex(&models.Like{}, "idx_likes_post_fingerprint"))
	assert.False(t, db.Migrator().HasColumn(&models.Post{}, "like_count"))
	require.NoError(t, Ping(context.Background(), db))
}

func TestConnect_SkipSchema(t *testing.T) {
	db, err := ConnectWithOptions(sqliteConfig(), ConnectOptions{SkipSchema: true})
	require.NoError(t, err)
	assert.False(t, db.Migrator().HasTable(&models.Post{}))
}

func TestDialector_UnknownDriver(t *testing.T) {
	_, err := Dialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(&config.Config{
		DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "quill",
	})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=quill sslmode=disable", dsn)
}

func TestPersistentModels(t *testing.T) {
	assert.Len(t, PersistentModels(), 2)
}
