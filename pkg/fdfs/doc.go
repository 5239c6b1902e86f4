// Package fdfs stores files the way a FastDFS client does: every file gets
// a "<group>/M00/<hh>/<hh>/<id>.<ext>" path, is served from a web server
// address, and can be fetched, queried or deleted by that path or by its
// access URL.
//
// The bytes live on a file.Storage backend (local disk, S3 or Aliyun OSS),
// so no tracker or storage nodes are involved.
//
//	client, err := fdfs.New(storage,
//		fdfs.WithWebServerURL("img.example.com"),
//		fdfs.WithInfoCache(fdfs.NewMemoryInfoCache(1024, 5*time.Minute)),
//	)
//	sp, err := client.UploadBytes(ctx, data, "jpg")
//	url := client.URL(sp) // http://img.example.com/group1/M00/3F/A2/....jpg
//	info, err := client.FileInfo(ctx, url)
//
// NewFromConfig builds the backend and cache from an environment-driven
// Config and returns ErrDisabled unless FDFS_ENABLED is set.
//
// Images uploaded with UploadImageWithThumb get a thumbnail stored beside
// them at ThumbPath, e.g. "a.jpg" and "a_150x150.jpg".
package fdfs
