package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/locallibrary/internal/catalog"
	"github.com/listenupapp/locallibrary/internal/config"
	"github.com/listenupapp/locallibrary/internal/logger"
)

// ProvideCatalog provides the catalog handler set over the store and
// search index.
func ProvideCatalog(i do.Injector) (*catalog.Catalog, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)

	return catalog.New(storeHandle.Store, catalog.Options{
		QueryTimeout: cfg.Server.QueryTimeout,
		Logger:       log.Logger,
		Index:        indexHandle.Index,
	}), nil
}
