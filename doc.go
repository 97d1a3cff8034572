// Package cardfs exposes a storage volume, typically an SD card mounted as a
// directory, as a browsable file tree that can be listed, streamed up and
// down, and pruned over HTTP.
//
// Two path namespaces address the same files:
//
//   - VirtualPath: the public namespace rooted at the mount root ("/sdcard/...")
//   - VolumePath: the volume's native namespace ("0:/...")
//
// PathTranslator is the only place the two meet. Everything a client sends is
// a VirtualPath; everything handed to a Volume is a VolumePath.
//
// # Key Components
//
//   - FileService: list, download, delete, upload, mkdir and batch delete
//   - Volume: interface for the storage driver (see the volume package)
//   - TreeWalker: depth-bounded recursive listing in native directory order
//   - Eraser: depth-first post-order delete that stops at the first failure
//   - UploadSink: per-request session writing a chunked upload to disk
//   - Download: pull-based reader streaming a file without read-ahead
//
// # Example Usage
//
//	root, err := os.OpenRoot("/mnt/card")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vol := volume.NewLocal(root, cardfs.DefaultVolumeRoot)
//
//	service, err := cardfs.NewFileService(vol, cardfs.ServiceConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tree, err := service.List(ctx, cardfs.ListQuery{Depth: -1})
//
// See the http package for the REST API built on FileService.
package cardfs
