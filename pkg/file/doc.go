// Package file provides object storage backends addressed by storage keys,
// plus helpers for validating uploaded multipart files.
//
// The Storage interface is implemented by:
//   - LocalStorage: files under a base directory
//   - S3Storage: Amazon S3 and S3-compatible services (MinIO, Aliyun OSS, Wasabi)
//
// Keys are cleaned with CleanKey before use. Cleaning normalizes separators,
// resolves "." and ".." and strips the leading separator, so a key can never
// reach outside the storage root and `\group1\M00\a.jpg` addresses the same
// object as "group1/M00/a.jpg".
//
// # Usage
//
//	storage, err := file.NewLocalStorage("/var/lib/fdfs", "http://localhost:8080/files/")
//	if err != nil {
//		return err
//	}
//
//	obj, err := storage.Put(ctx, "group1/M00/00/01/a.jpg", r, file.ObjectMeta{})
//	if err != nil {
//		return err
//	}
//	url := storage.URL(obj.Key)
//
// S3 storage:
//
//	storage, err := file.NewS3Storage(ctx, file.S3Config{
//		Bucket:      "my-bucket",
//		Region:      "us-east-1",
//		AccessKeyID: "key",
//		SecretKey:   "secret",
//	})
//
// # Checksums
//
// Object.Checksum is the IEEE CRC32 of the content. LocalStorage computes it
// while writing and in Stat. S3Storage keeps whatever the caller stored under
// the MetaChecksum metadata key.
//
// # Validation
//
//	if err := file.ValidateSize(fh, 5<<20); err != nil {
//		return err
//	}
//	if err := file.ValidateMIMEType(fh, "image/jpeg", "image/png"); err != nil {
//		return err
//	}
//
// MIME types are detected from content, never from the extension.
//
// # Error Handling
//
// Backend failures are mapped to package errors, so callers can test with
// errors.Is regardless of the backend:
//
//	rc, err := storage.Get(ctx, key)
//	if errors.Is(err, file.ErrFileNotFound) {
//		// 404
//	}
//
// S3 error codes map as follows:
//   - NoSuchKey, NotFound -> ErrFileNotFound
//   - NoSuchBucket -> ErrBucketNotFound
//   - AccessDenied -> ErrAccessDenied
package file
