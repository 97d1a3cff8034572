package main

import (
	"fmt"
	"os"

	"github.com/sagarc03/cardfs"
	"github.com/sagarc03/cardfs/config"
	"github.com/sagarc03/cardfs/volume"
)

// openService opens the configured volume and builds a FileService on it.
// When create is set a missing storage directory is created first. The
// returned func closes the volume.
func openService(cfg *config.Config, create bool) (*cardfs.FileService, func(), error) {
	if create {
		if err := os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
			return nil, nil, fmt.Errorf("create storage directory: %w", err)
		}
	} else if _, err := os.Stat(cfg.Storage.Path); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("storage directory does not exist: %s", cfg.Storage.Path)
	}

	root, err := os.OpenRoot(cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage root: %w", err)
	}

	vol := volume.NewLocal(root, cardfs.VolumePath(cfg.Storage.VolumeRoot))
	service, err := cardfs.NewFileService(vol, cardfs.ServiceConfig{
		MountRoot:    cardfs.VirtualPath(cfg.Storage.MountRoot),
		VolumeRoot:   cardfs.VolumePath(cfg.Storage.VolumeRoot),
		ListDepth:    cfg.List.Depth,
		MaxListDepth: cfg.List.MaxDepth,
	})
	if err != nil {
		_ = root.Close()
		return nil, nil, fmt.Errorf("create service: %w", err)
	}

	return service, func() { _ = root.Close() }, nil
}
