package http

import (
	"github.com/samirrijal/neverbeen/internal/adapters/postgres"
	"github.com/samirrijal/neverbeen/internal/adapters/valkey"
	"github.com/samirrijal/neverbeen/internal/core/ports"
	"github.com/samirrijal/neverbeen/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
// DB, Cache and Feed are optional.
type Dependencies struct {
	Explorer *usecases.ExplorerService
	Places   *usecases.PlaceService
	Feed     ports.SampleFeed
	DB       *postgres.DB
	Cache    *valkey.Cache
}
