package testutil

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/oilmill/backend/internal/domain/masterdata"
	"github.com/oilmill/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockSqlx(t *testing.T) {
	db, mock := NewMockSqlx(t)
	mock.ExpectQuery(`SELECT 1 WHERE \$1`).WithArgs(true).WillReturnRows(mock.NewRows([]string{"n"}).AddRow(1))

	var n int
	require.NoError(t, db.Get(&n, db.Rebind("SELECT 1 WHERE ?"), true))
	assert.Equal(t, 1, n)
}

func TestNewSQLiteDB(t *testing.T) {
	db := NewSQLiteDB(t)

	var reasons []models.WriteoffReasonModel
	require.NoError(t, db.Order("reason_code").Find(&reasons).Error)
	require.Len(t, reasons, len(WriteoffReasons))

	active := 0
	for _, r := range reasons {
		if r.Active {
			active++
		}
	}
	assert.Equal(t, len(WriteoffReasons)-1, active)
}

func TestCreateMaterialAndSupplier(t *testing.T) {
	db := NewSQLiteDB(t)

	m := CreateMaterial(t, db, "Groundnut Seed", masterdata.CategorySeeds, "GNS-K")
	s := CreateSupplier(t, db, "Sri Krishna Mills", "SKM")

	var count int64
	require.NoError(t, db.Model(&models.MaterialModel{}).Where("id = ?", m.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&models.SupplierModel{}).Where("id = ?", s.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPerformRequest(t *testing.T) {
	engine := gin.New()
	engine.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		_ = c.ShouldBindJSON(&body)
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": body, "meta": gin.H{"operator": c.GetHeader("X-Operator")}})
	})

	w := PerformRequest(t, engine, http.MethodPost, "/echo", map[string]string{"k": "v"}, map[string]string{"X-Operator": "ravi"})

	assert.Equal(t, http.StatusCreated, w.Code)
	env := DecodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"k":"v"}`, string(env.Data))
	assert.Equal(t, "ravi", env.Meta["operator"])
	assert.Nil(t, env.Error)
}

func TestAssertErrorCode(t *testing.T) {
	engine := gin.New()
	engine.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "NOT_FOUND", "message": "batch not found"},
		})
	})

	w := PerformRequest(t, engine, http.MethodGet, "/missing", nil, nil)
	AssertErrorCode(t, w, http.StatusNotFound, "NOT_FOUND")
}
