package container

import (
	"github.com/protoshare/protoshare/cmd/protoshare/repository"
	"github.com/protoshare/protoshare/cmd/protoshare/service"
	"github.com/protoshare/protoshare/common/bootstrap"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	// Components
	Components *bootstrap.Components

	// Repositories
	History *repository.HistoryStore

	// Services
	UploadService *service.UploadService
	SiteService   *service.SiteService
}

// NewContainer initializes all services and repositories once.
// The history store is constructed here and handed to every service that
// needs it, so all mutations go through one serialized instance.
func NewContainer(components *bootstrap.Components) (*Container, error) {
	history := repository.NewHistoryStore(components.Storage.HistoryFile(), components.Logger)

	uploadService := service.NewUploadService(
		components.Storage,
		history,
		components.Config.Upload.SlugLength,
		components.Logger,
	)
	siteService := service.NewSiteService(
		components.Storage,
		history,
		components.Logger,
	)

	return &Container{
		Components:    components,
		History:       history,
		UploadService: uploadService,
		SiteService:   siteService,
	}, nil
}
