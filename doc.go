// Package s3sync implements differential file-tree synchronization against
// an S3-compatible object store.
//
// Callers describe what they want as an ordered list of declarative sync
// specs (upload, download, delete) and the client plans them into tasks and
// executes them strictly in order. Differential mode skips objects whose
// content already matches, using the store's ETag as an MD5 fingerprint with
// a modification-time fallback. Debug mode runs every listing and decision
// without transferring or deleting anything.
//
// Basic usage:
//
//	client, err := s3sync.New(ctx, "my-bucket",
//	    s3sync.WithRegion("eu-west-1"),
//	    s3sync.WithCredentials(accessKey, secretKey),
//	    s3sync.WithDifferential(true),
//	)
//	if err != nil {
//	    return err
//	}
//
//	results, err := client.Run(ctx, []synctypes.SyncSpec{
//	    {Action: synctypes.ActionUpload, WorkingDir: "dist", SourcePaths: []string{"."}, DestPrefix: "site/"},
//	    {Action: synctypes.ActionDelete, DestPrefix: "site/stale/"},
//	})
package s3sync
