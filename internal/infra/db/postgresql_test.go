package db

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/period-engine/config"
	"github.com/finance-tracker/period-engine/internal/integration/persistence/model"
)

func TestNewConnection_SQLite(t *testing.T) {
	database, err := NewConnection(&config.DatabaseConfig{
		URL:             fmt.Sprintf("sqlite://file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	assert.Equal(t, "sqlite", database.DB().Dialector.Name())
	assert.True(t, database.HealthCheck())
	require.NoError(t, database.AutoMigrate(model.AllModels()...))
	assert.True(t, database.DB().Migrator().HasTable(&model.PeriodModel{}))
}
