package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/badili/odk-dashboard3/internal/managers"
	"github.com/badili/odk-dashboard3/internal/schemas"
	"github.com/badili/odk-dashboard3/internal/utils"
)

// SettingsHdl exposes the dashboard configuration key/value store.
type SettingsHdl interface {
	ListSettings(c *gin.Context)
	GetSetting(c *gin.Context)
	SaveSetting(c *gin.Context)
}

type SettingsHandler struct {
	DatabaseManager managers.DatabaseMgr
}

func NewSettingsHandler(databaseManager managers.DatabaseMgr) SettingsHdl {
	return &SettingsHandler{DatabaseManager: databaseManager}
}

// ListSettings returns all settings, paginated, ordered by key.
func (handler *SettingsHandler) ListSettings(c *gin.Context) {
	offset, limit := utils.ParsePaginationParams(c)

	queryString := "SELECT setting_key, setting_value, updated_at FROM dashboard.system_settings ORDER BY setting_key"
	rows, err := handler.DatabaseManager.GetPool().Query(c.Request.Context(), queryString)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	settings := make([]schemas.SettingDTO, 0)
	for rows.Next() {
		var setting schemas.SettingDTO
		var updatedAt time.Time
		if err = rows.Scan(&setting.Key, &setting.Value, &updatedAt); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			return
		}
		setting.UpdatedAt = updatedAt.Format(time.RFC3339)
		settings = append(settings, setting)
	}

	utils.SendPaginatedResponse(c, settings, offset, limit, len(settings))
}

// GetSetting returns a single setting by key.
func (handler *SettingsHandler) GetSetting(c *gin.Context) {
	key := c.Param(utils.SettingKeyKey)

	queryString := "SELECT setting_key, setting_value, updated_at FROM dashboard.system_settings WHERE setting_key = $1"
	row := handler.DatabaseManager.GetPool().QueryRow(c.Request.Context(), queryString, key)

	var setting schemas.SettingDTO
	var updatedAt time.Time
	if err := row.Scan(&setting.Key, &setting.Value, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.SettingNotFound, http.StatusNotFound, err)
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	setting.UpdatedAt = updatedAt.Format(time.RFC3339)
	utils.WriteAndLogResponse(c, &setting, http.StatusOK)
}

// SaveSetting inserts or updates a setting under its key.
func (handler *SettingsHandler) SaveSetting(c *gin.Context) {
	saveRequest := c.MustGet(utils.SanitizedPayloadKey).(*schemas.SaveSettingRequest)

	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(c, tx, err) }()

	updatedAt := time.Now()
	queryString := "INSERT INTO dashboard.system_settings (setting_id, setting_key, setting_value, updated_at) " +
		"VALUES ($1, $2, $3, $4) " +
		"ON CONFLICT (setting_key) DO UPDATE SET setting_value = $3, updated_at = $4"
	if _, err = tx.Exec(c.Request.Context(), queryString, uuid.New(), saveRequest.Key, saveRequest.Value, updatedAt); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	setting := &schemas.SettingDTO{
		Key:       saveRequest.Key,
		Value:     saveRequest.Value,
		UpdatedAt: updatedAt.Format(time.RFC3339),
	}
	utils.WriteAndLogResponse(c, setting, http.StatusOK)
}
