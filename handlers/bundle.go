package handlers

import (
	"nestmart/utils"
)

// HandlerBundle groups all endpoint handlers for route registration.
type HandlerBundle struct {
	Tokens *utils.TokenService

	Auth       *AuthHandler
	Payment    *PaymentHandler
	Products   *RecordsHandler
	Properties *RecordsHandler
	Blogs      *RecordsHandler
	Reviews    *RecordsHandler
	Users      *UserHandler
	Stats      *StatsHandler
	Storage    *StorageHandler
	Health     *HealthHandler
}
