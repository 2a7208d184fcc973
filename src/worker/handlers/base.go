package handlers

import (
	"analytics-sync/src/services"

	"github.com/sirupsen/logrus"
)

type Handler struct {
	SyncService services.SyncServiceI
	Logger      *logrus.Logger
}

func NewHandler(syncService services.SyncServiceI, logger *logrus.Logger) *Handler {
	return &Handler{
		SyncService: syncService,
		Logger:      logger,
	}
}
