package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/models"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const LogRetention = 30 * 24 * time.Hour

// StartCleanup schedules a daily purge of system logs older than
// retention. Stop the returned scheduler on shutdown.
func StartCleanup(db *gorm.DB, retention time.Duration) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc("@daily", func() {
		purgeSystemLogs(db, time.Now().Add(-retention))
	}); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

func purgeSystemLogs(db *gorm.DB, cutoff time.Time) {
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "error", result.Error)
	} else if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}
}
