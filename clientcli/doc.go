// Package clientcli provides a client library for cardfs servers.
//
// It supports list, upload, download, delete, batch delete and mkdir against
// the server's HTTP routes. Uploads are streamed as multipart bodies and
// downloads are copied straight to disk, so file size is not bounded by
// memory. The package includes profile-based configuration for managing
// connections to several cards.
//
// # Basic Usage
//
// Create a client and upload a file:
//
//	client, err := clientcli.New(&clientcli.Config{Endpoint: "http://192.168.4.1:5708"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPath: "./track.mp3",
//		RemoteDir: "/sdcard/music",
//	})
//
// # Profile Configuration
//
// Use profiles to manage multiple servers:
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("camera")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUpload(os.Stdout, results)
package clientcli
