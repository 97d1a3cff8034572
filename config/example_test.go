package config_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sagarc03/cardfs/config"
)

func ExampleLoad() {
	dir, err := os.MkdirTemp("", "cardfs-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.yaml")
	yaml := "env: prod\nstorage:\n  mount_root: /card\n  volume_root: \"1:\"\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load([]string{path}, nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(cfg.Storage.MountRoot, cfg.Storage.VolumeRoot, cfg.LogFormat())
	// Output: /card 1: json
}

func ExampleDefault() {
	cfg := config.Default()
	fmt.Printf("port=%d mount=%s depth=%d/%d\n",
		cfg.Server.Port, cfg.Storage.MountRoot, cfg.List.Depth, cfg.List.MaxDepth)
	// Output: port=5708 mount=/sdcard depth=12/32
}
